package models

import "time"

// Stage is the position of a pipeline run in the certificate lifecycle.
type Stage string

const (
	StageDraft    Stage = "draft"
	StageStored   Stage = "stored"
	StageMinted   Stage = "minted"
	StageApproved Stage = "approved"
	StageFailed   Stage = "failed"
)

// Run is one journaled execution of the issue pipeline.
type Run struct {
	ID             string
	Account        string
	FileName       string
	Title          string
	Recipient      string
	Stage          Stage
	BlobID         string
	ContentAddress string
	ObjectID       string
	TxDigest       string
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Approval is a journaled approve transaction.
type Approval struct {
	ID         string
	ObjectID   string
	Approver   string
	TxDigest   string
	ApprovedAt time.Time
}
