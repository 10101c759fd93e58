// Package runs persists issue pipeline runs and their stage transitions.
package runs

import (
	"context"

	"github.com/dmitrijs2005/akashi/internal/client/models"
)

// Repository stores pipeline runs.
type Repository interface {
	// Create inserts a new run.
	Create(ctx context.Context, run *models.Run) error

	// Update overwrites the mutable fields of a run (stage, blob, object,
	// digest, error, updated_at). A missing run is common.ErrorNotFound.
	Update(ctx context.Context, run *models.Run) error

	// GetByID returns one run or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Run, error)

	// ListByAccount returns the newest runs of account, at most limit.
	ListByAccount(ctx context.Context, account string, limit int) ([]models.Run, error)

	// ListByObjectID returns the runs that minted objectID. Usually one.
	ListByObjectID(ctx context.Context, objectID string) ([]models.Run, error)
}
