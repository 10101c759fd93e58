// Package services contains the application services of the Akashi client:
// the certificate lifecycle (upload, mint, issue, activity, approve) and the
// wallet connection flow used by the CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/client/journal"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/logging"
	"github.com/dmitrijs2005/akashi/internal/metrics"
	"github.com/google/uuid"
)

// BlobStore stores certificate files and reads them back by content address.
// Implemented by walrus.Client and s3blob.Store.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, owner string) (*models.UploadResult, error)
	Fetch(ctx context.Context, contentAddress string) ([]byte, error)
}

// CertificateService drives the certificate lifecycle.
//
// Write operations take the caller's wallet.Session; a disconnected session
// fails with common.ErrNotConnected before any external call is made.
type CertificateService interface {
	Upload(ctx context.Context, session wallet.Session, data []byte) (*models.UploadResult, error)
	Mint(ctx context.Context, session wallet.Session, req models.MintRequest) (*models.Certificate, error)
	Issue(ctx context.Context, session wallet.Session, draft models.Draft) (*IssueResult, error)
	ListActivity(ctx context.Context, account string, mode models.Mode) ([]models.CertificateView, error)
	Approve(ctx context.Context, session wallet.Session, objectID string) (*models.ApprovalResult, error)
	Fetch(ctx context.Context, contentAddress string) ([]byte, error)
	Runs(ctx context.Context, account string, limit int) ([]models.Run, error)
	Approvals(ctx context.Context, approver string) ([]models.Approval, error)
	Ping(ctx context.Context) error
}

// IssueResult is the outcome of a complete issue pipeline.
type IssueResult struct {
	RunID       string
	Upload      *models.UploadResult
	Certificate *models.Certificate
}

type certificateService struct {
	store     BlobStore
	chain     client.Client
	journal   *journal.Journal
	packageID string
	pageLimit int
	maxPages  int
	guard     *ActionGuard
	logger    logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*certificateService)

func WithPackageID(id string) Option {
	return func(s *certificateService) { s.packageID = id }
}

// WithPaging bounds activity queries to maxPages pages of limit items.
func WithPaging(limit, maxPages int) Option {
	return func(s *certificateService) {
		if limit > 0 {
			s.pageLimit = limit
		}
		if maxPages > 0 {
			s.maxPages = maxPages
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *certificateService) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *certificateService) { s.metrics = m }
}

func WithGuard(g *ActionGuard) Option {
	return func(s *certificateService) { s.guard = g }
}

func withClock(now func() time.Time) Option {
	return func(s *certificateService) { s.now = now }
}

// NewCertificateService wires the lifecycle to a blob store, a chain client
// and the local journal.
func NewCertificateService(store BlobStore, chain client.Client, j *journal.Journal, opts ...Option) CertificateService {
	s := &certificateService{
		store:     store,
		chain:     chain,
		journal:   j,
		pageLimit: 50,
		maxPages:  4,
		guard:     NewActionGuard(),
		logger:    logging.Discard(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *certificateService) function(name string) client.MoveFunction {
	return client.MoveFunction{Package: s.packageID, Module: common.CertificateModule, Function: name}
}

// structType is the fully qualified certificate struct tag.
func (s *certificateService) structType() string {
	return s.packageID + "::" + common.CertificateModule + "::" + common.CertificateStruct
}

// Upload stores data with the session account as owner.
func (s *certificateService) Upload(ctx context.Context, session wallet.Session, data []byte) (res *models.UploadResult, err error) {
	defer func(start time.Time) { s.metrics.Observe(metrics.OpUpload, start, err) }(time.Now())

	if !session.Connected() {
		return nil, common.ErrNotConnected
	}

	res, err = s.store.Upload(ctx, data, session.Account())
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "blob stored", "blob_id", res.BlobID, "outcome", string(res.Outcome), "size", res.Size)
	return res, nil
}

// Mint creates the on-chain certificate for an already stored file.
func (s *certificateService) Mint(ctx context.Context, session wallet.Session, req models.MintRequest) (cert *models.Certificate, err error) {
	defer func(start time.Time) { s.metrics.Observe(metrics.OpMint, start, err) }(time.Now())

	if !session.Connected() {
		return nil, common.ErrNotConnected
	}

	req.Recipient = wallet.NormalizeAddress(req.Recipient)
	release, err := s.guard.Acquire(MintKey(req.ContentAddress, req.Recipient))
	if err != nil {
		return nil, err
	}
	defer release()

	return s.mint(ctx, session, req)
}

func (s *certificateService) mint(ctx context.Context, session wallet.Session, req models.MintRequest) (*models.Certificate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := session.SignAndSubmit(ctx, wallet.MoveCall{
		Package:   s.packageID,
		Module:    common.CertificateModule,
		Function:  common.MintFunction,
		Arguments: []any{req.Title, req.Description, req.ContentAddress, req.Recipient},
	})
	if err != nil {
		return nil, err
	}
	if err := checkFinalized(res); err != nil {
		return nil, err
	}

	objectID, ok := res.Block.CreatedObject(s.structType())
	if !ok {
		return nil, fmt.Errorf("%w: %s created no %s object", common.ErrTransactionFailed, res.Digest, common.CertificateStruct)
	}

	mintedAt := res.Block.Timestamp()
	if mintedAt.IsZero() {
		mintedAt = s.now()
	}

	cert := &models.Certificate{
		ObjectID:       objectID,
		Title:          req.Title,
		Description:    req.Description,
		ContentAddress: req.ContentAddress,
		Recipient:      req.Recipient,
		Sender:         session.Account(),
		Approved:       false,
		MintedAt:       mintedAt,
		TxDigest:       res.Digest,
	}
	s.logger.Info(ctx, "certificate minted", "object_id", objectID, "digest", res.Digest, "recipient", req.Recipient)
	return cert, nil
}

// Approve submits approve_certificate for objectID. Whether the session
// account is the recipient is left to the chain to decide.
func (s *certificateService) Approve(ctx context.Context, session wallet.Session, objectID string) (result *models.ApprovalResult, err error) {
	defer func(start time.Time) { s.metrics.Observe(metrics.OpApprove, start, err) }(time.Now())

	if !session.Connected() {
		return nil, common.ErrNotConnected
	}
	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		return nil, fmt.Errorf("%w: missing object id", common.ErrInvalidDraft)
	}

	release, err := s.guard.Acquire(ApproveKey(objectID))
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := session.SignAndSubmit(ctx, wallet.MoveCall{
		Package:   s.packageID,
		Module:    common.CertificateModule,
		Function:  common.ApproveFunction,
		Arguments: []any{objectID},
	})
	if err != nil {
		return nil, err
	}
	if err := checkFinalized(res); err != nil {
		return nil, err
	}

	result = &models.ApprovalResult{ObjectID: objectID, Approver: session.Account(), TxDigest: res.Digest}
	s.logger.Info(ctx, "certificate approved", "object_id", objectID, "digest", res.Digest)

	if err := s.journalApproval(ctx, result); err != nil {
		// the transaction is final; a journal miss must not turn it into a failure
		s.logger.Error(ctx, "journal approval", "object_id", objectID, "digest", res.Digest, "error", err)
	}
	return result, nil
}

// journalApproval records the approval and moves any local run that minted
// the object to the approved stage, atomically.
func (s *certificateService) journalApproval(ctx context.Context, result *models.ApprovalResult) error {
	now := s.now()
	return s.journal.WithTx(ctx, func(ctx context.Context, tx *journal.Tx) error {
		err := tx.Approvals.Create(ctx, &models.Approval{
			ID:         uuid.NewString(),
			ObjectID:   result.ObjectID,
			Approver:   result.Approver,
			TxDigest:   result.TxDigest,
			ApprovedAt: now,
		})
		if err != nil {
			return err
		}

		minted, err := tx.Runs.ListByObjectID(ctx, result.ObjectID)
		if err != nil {
			return err
		}
		for i := range minted {
			run := &minted[i]
			if run.Stage != models.StageMinted {
				continue
			}
			run.Stage = models.StageApproved
			run.UpdatedAt = now
			if err := tx.Runs.Update(ctx, run); err != nil {
				return err
			}
			s.logger.Info(ctx, "run advanced", "run_id", run.ID, "stage", string(run.Stage))
		}
		return nil
	})
}

// Fetch reads a stored certificate file back.
func (s *certificateService) Fetch(ctx context.Context, contentAddress string) (data []byte, err error) {
	defer func(start time.Time) { s.metrics.Observe(metrics.OpFetch, start, err) }(time.Now())
	return s.store.Fetch(ctx, contentAddress)
}

// Runs returns the newest journaled pipeline runs of account.
func (s *certificateService) Runs(ctx context.Context, account string, limit int) ([]models.Run, error) {
	if account == "" {
		return []models.Run{}, nil
	}
	return s.journal.Runs.ListByAccount(ctx, account, limit)
}

// Approvals returns the journaled approvals signed by approver.
func (s *certificateService) Approvals(ctx context.Context, approver string) ([]models.Approval, error) {
	if approver == "" {
		return []models.Approval{}, nil
	}
	return s.journal.Approvals.ListByApprover(ctx, approver)
}

func (s *certificateService) Ping(ctx context.Context) error {
	return s.chain.Ping(ctx)
}

// checkFinalized refuses results that do not carry successful effects.
func checkFinalized(res *wallet.SubmitResult) error {
	if res == nil || res.Block == nil {
		return fmt.Errorf("%w: signer returned no transaction", common.ErrTransactionFailed)
	}
	if !res.Block.Succeeded() {
		return fmt.Errorf("%w: %s did not succeed", common.ErrTransactionFailed, res.Digest)
	}
	return nil
}

// queryError wraps a chain read failure as common.ErrQueryFailed, keeping a
// timeout visible.
func queryError(op string, err error) error {
	wrapped := fmt.Errorf("%w: %s: %w", common.ErrQueryFailed, op, err)
	if errors.Is(err, common.ErrTimeout) {
		return errors.Join(common.ErrTimeout, wrapped)
	}
	return wrapped
}
