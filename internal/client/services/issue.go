package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/metrics"
	"github.com/google/uuid"
)

// Issue runs the whole pipeline for one draft: validate, store the file,
// mint the certificate. Each stage is journaled; the first failure marks the
// run failed and stops the pipeline, so mint never runs after a failed
// upload.
func (s *certificateService) Issue(ctx context.Context, session wallet.Session, draft models.Draft) (result *IssueResult, err error) {
	defer func(start time.Time) { s.metrics.Observe(metrics.OpIssue, start, err) }(time.Now())

	if !session.Connected() {
		return nil, common.ErrNotConnected
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	draft.Recipient = wallet.NormalizeAddress(draft.Recipient)

	release, err := s.guard.Acquire(IssueKey(draft.Data, draft.Recipient))
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	run := &models.Run{
		ID:        uuid.NewString(),
		Account:   session.Account(),
		FileName:  draft.FileName,
		Title:     draft.Title,
		Recipient: draft.Recipient,
		Stage:     models.StageDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.journal.Runs.Create(ctx, run); err != nil {
		return nil, err
	}

	log := s.logger.With("run_id", run.ID)
	log.Info(ctx, "pipeline started", "stage", string(run.Stage), "file", draft.FileName)

	upload, err := s.Upload(ctx, session, draft.Data)
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}

	run.Stage = models.StageStored
	run.BlobID = upload.BlobID
	run.ContentAddress = upload.ContentAddress
	s.advance(ctx, run)

	cert, err := s.mint(ctx, session, models.MintRequest{
		Title:          draft.Title,
		Description:    draft.Description,
		ContentAddress: upload.ContentAddress,
		Recipient:      draft.Recipient,
	})
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}

	run.Stage = models.StageMinted
	run.ObjectID = cert.ObjectID
	run.TxDigest = cert.TxDigest
	s.advance(ctx, run)

	return &IssueResult{RunID: run.ID, Upload: upload, Certificate: cert}, nil
}

// advance journals a stage transition. Journal errors are logged only: the
// external effect has already happened.
func (s *certificateService) advance(ctx context.Context, run *models.Run) {
	run.UpdatedAt = s.now()
	s.logger.Info(ctx, "pipeline stage",
		"run_id", run.ID, "stage", string(run.Stage),
		"blob_id", run.BlobID, "object_id", run.ObjectID, "digest", run.TxDigest)

	if err := s.journal.Runs.Update(ctx, run); err != nil {
		s.logger.Error(ctx, "journal run", "run_id", run.ID, "stage", string(run.Stage), "error", err)
	}
}

func (s *certificateService) fail(ctx context.Context, run *models.Run, cause error) {
	run.Stage = models.StageFailed
	run.Error = cause.Error()
	run.UpdatedAt = s.now()
	s.logger.Warn(ctx, "pipeline failed", "run_id", run.ID, "error", cause)

	// a canceled ctx must not stop the failure from being recorded
	if err := s.journal.Runs.Update(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error(ctx, "journal run", "run_id", run.ID, "stage", string(run.Stage), "error", err)
	}
}
