package models

// UploadOutcome tells a fresh blob apart from one the store already had.
type UploadOutcome string

const (
	OutcomeNewlyCreated     UploadOutcome = "newly_created"
	OutcomeAlreadyCertified UploadOutcome = "already_certified"
)

// UploadResult is the answer of a successful blob upload.
type UploadResult struct {
	BlobID         string
	ContentAddress string
	Outcome        UploadOutcome
	Size           int64
}
