// Package approvals journals finalized approve transactions.
package approvals

import (
	"context"

	"github.com/dmitrijs2005/akashi/internal/client/models"
)

type Repository interface {
	// Create stores an approval. Each transaction digest is stored once.
	Create(ctx context.Context, a *models.Approval) error

	// ListByApprover returns the approvals signed by approver, newest first.
	ListByApprover(ctx context.Context, approver string) ([]models.Approval, error)
}
