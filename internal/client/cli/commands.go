package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/filex"
)

const defaultRunsLimit = 10

// report prints a user-facing message for err and returns it unchanged.
func (a *App) report(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	a.logger.Error(ctx, op+" failed", "error", err)

	switch {
	case errors.Is(err, common.ErrNotConnected):
		fmt.Fprintln(a.out, "No wallet connected. Use 'connect', 'newkey' or 'importkey' first.")
	case errors.Is(err, common.ErrSignatureRejected):
		fmt.Fprintln(a.out, "Transaction was not signed.")
	case errors.Is(err, common.ErrActionInProgress):
		fmt.Fprintln(a.out, "The same action is already in progress.")
	case errors.Is(err, common.ErrTimeout):
		fmt.Fprintf(a.out, "%s timed out: %v\n", op, err)
	default:
		fmt.Fprintf(a.out, "%s failed: %v\n", op, err)
	}
	return err
}

func (a *App) connectWith(ctx context.Context, s wallet.Session) {
	a.session = s
	a.tracker.Invalidate()
	fmt.Fprintf(a.out, "Connected as %s\n", s.Account())
}

// Connect unlocks the existing keystore.
func (a *App) Connect(ctx context.Context) error {
	if !a.wallets.KeystoreExists() {
		fmt.Fprintln(a.out, "No keystore found. Use 'newkey' or 'importkey'.")
		return common.ErrKeystoreNotPresent
	}
	pass, err := GetSecret(a.reader, "Passphrase", a.out)
	if err != nil {
		return a.report(ctx, "connect", err)
	}
	defer common.WipeByteArray(pass)

	s, err := a.wallets.Unlock(ctx, pass)
	if err != nil {
		if errors.Is(err, common.ErrInvalidPassphrase) {
			fmt.Fprintln(a.out, "Wrong passphrase.")
			return err
		}
		return a.report(ctx, "connect", err)
	}
	a.connectWith(ctx, s)
	return nil
}

func (a *App) readNewPassphrase() ([]byte, error) {
	pass, err := GetSecret(a.reader, "New passphrase", a.out)
	if err != nil {
		return nil, err
	}
	confirm, err := GetSecret(a.reader, "Repeat passphrase", a.out)
	if err != nil {
		common.WipeByteArray(pass)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if len(pass) == 0 || string(pass) != string(confirm) {
		common.WipeByteArray(pass)
		return nil, errors.New("passphrases are empty or do not match")
	}
	return pass, nil
}

// NewKey generates a fresh keypair and stores it in the keystore.
func (a *App) NewKey(ctx context.Context) error {
	pass, err := a.readNewPassphrase()
	if err != nil {
		return a.report(ctx, "newkey", err)
	}
	defer common.WipeByteArray(pass)

	s, err := a.wallets.Create(ctx, pass)
	if err != nil {
		return a.report(ctx, "newkey", err)
	}
	a.connectWith(ctx, s)
	return nil
}

// ImportKey replaces the keystore with a hex ed25519 seed.
func (a *App) ImportKey(ctx context.Context) error {
	seed, err := GetSecret(a.reader, "Seed (hex)", a.out)
	if err != nil {
		return a.report(ctx, "importkey", err)
	}
	defer common.WipeByteArray(seed)

	pass, err := a.readNewPassphrase()
	if err != nil {
		return a.report(ctx, "importkey", err)
	}
	defer common.WipeByteArray(pass)

	s, err := a.wallets.Import(ctx, string(seed), pass)
	if err != nil {
		return a.report(ctx, "importkey", err)
	}
	a.connectWith(ctx, s)
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	a.session = wallet.Session{}
	a.tracker.Invalidate()
	if err := a.wallets.Disconnect(ctx); err != nil {
		return a.report(ctx, "disconnect", err)
	}
	fmt.Fprintln(a.out, "Disconnected.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isConnected() {
		fmt.Fprintln(a.out, "Not connected.")
		return nil
	}
	fmt.Fprintln(a.out, a.session.Account())
	return nil
}

func (a *App) readFile(path string) ([]byte, error) {
	return filex.ReadFileLimited(path, a.config.MaxFileSize)
}

// Upload stores a file without minting.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: upload <file>")
		return nil
	}
	data, err := a.readFile(args[0])
	if err != nil {
		return a.report(ctx, "upload", err)
	}
	res, err := a.certs.Upload(ctx, a.session, data)
	if err != nil {
		return a.report(ctx, "upload", err)
	}
	fmt.Fprintf(a.out, "Stored %s (%s)\n%s\n", res.BlobID, res.Outcome, res.ContentAddress)
	return nil
}

// Issue runs the full pipeline: prompt for the draft, upload, mint.
func (a *App) Issue(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: issue <file>")
		return nil
	}
	data, err := a.readFile(args[0])
	if err != nil {
		return a.report(ctx, "issue", err)
	}

	draft := models.Draft{FileName: filepath.Base(args[0]), Data: data}
	if draft.Title, err = GetTextWithDefault(a.reader, "Title", models.TitleFromFileName(draft.FileName), a.out); err != nil {
		return err
	}
	if draft.Description, err = GetSimpleText(a.reader, "Description", a.out); err != nil {
		return err
	}
	if draft.Recipient, err = GetSimpleText(a.reader, "Recipient address", a.out); err != nil {
		return err
	}

	res, err := a.certs.Issue(ctx, a.session, draft)
	if err != nil {
		return a.report(ctx, "issue", err)
	}
	fmt.Fprintf(a.out, "Issued certificate %s\n  content: %s\n  tx:      %s\n",
		res.Certificate.ObjectID, res.Upload.ContentAddress, res.Certificate.TxDigest)
	return nil
}

// Mint mints a certificate for content that is already stored.
func (a *App) Mint(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: mint <content-address> <recipient>")
		return nil
	}
	req := models.MintRequest{ContentAddress: args[0], Recipient: args[1]}

	var err error
	if req.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if req.Description, err = GetSimpleText(a.reader, "Description", a.out); err != nil {
		return err
	}

	cert, err := a.certs.Mint(ctx, a.session, req)
	if err != nil {
		return a.report(ctx, "mint", err)
	}
	fmt.Fprintf(a.out, "Minted certificate %s (tx %s)\n", cert.ObjectID, cert.TxDigest)
	return nil
}

// Activity lists the connected account's certificates as sender (default)
// or approver.
func (a *App) Activity(ctx context.Context, args []string) error {
	mode := models.ModeSender
	if len(args) > 0 {
		m, err := models.ParseMode(args[0])
		if err != nil {
			fmt.Fprintln(a.out, "Usage: activity [sender|approver]")
			return nil
		}
		mode = m
	}

	// with no wallet the listing is empty rather than an error
	account := a.session.Account()
	ticket := a.tracker.Begin(account, mode)
	views, err := a.certs.ListActivity(ctx, account, mode)
	if !a.tracker.IsLatest(ticket) {
		return nil
	}
	if err != nil {
		if errors.Is(err, common.ErrQueryFailed) {
			fmt.Fprintln(a.out, "Activity is unavailable right now.")
			views = nil
		} else {
			return a.report(ctx, "activity", err)
		}
	}

	a.printViews(mode, views)
	return err
}

func (a *App) printViews(mode models.Mode, views []models.CertificateView) {
	if len(views) == 0 {
		fmt.Fprintf(a.out, "No certificates (%s).\n", mode)
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tRECIPIENT\tSTATUS\tCONTENT")
	for _, v := range views {
		status := "pending"
		switch {
		case v.Approved:
			status = "approved"
		case v.Actionable():
			status = "approvable"
		}
		if !v.Enriched {
			status += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			common.ShortID(v.ObjectID), v.Title, common.ShortID(v.Recipient), status, v.ContentAddress)
	}
	_ = w.Flush()
}

// Approve approves a certificate addressed to the connected account.
func (a *App) Approve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: approve <object-id>")
		return nil
	}
	res, err := a.certs.Approve(ctx, a.session, args[0])
	if err != nil {
		return a.report(ctx, "approve", err)
	}
	a.tracker.Invalidate()
	fmt.Fprintf(a.out, "Approved %s (tx %s)\n", res.ObjectID, res.TxDigest)
	return nil
}

// Fetch downloads certificate content to a local file.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: fetch <content-address> <output-file>")
		return nil
	}
	data, err := a.certs.Fetch(ctx, args[0])
	if err != nil {
		return a.report(ctx, "fetch", err)
	}
	if err := filex.WriteFileAtomic(args[1], data, 0o644); err != nil {
		return a.report(ctx, "fetch", err)
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), args[1])
	return nil
}

// Runs prints the journaled issue runs of the connected account.
func (a *App) Runs(ctx context.Context, args []string) error {
	limit := defaultRunsLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "Usage: runs [n]")
			return nil
		}
		limit = n
	}
	if !a.isConnected() {
		return a.report(ctx, "runs", common.ErrNotConnected)
	}

	runs, err := a.certs.Runs(ctx, a.session.Account(), limit)
	if err != nil {
		return a.report(ctx, "runs", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tFILE\tSTAGE\tOBJECT\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", common.ShortID(r.ID), r.FileName, r.Stage, common.ShortID(r.ObjectID), r.Error)
	}
	_ = w.Flush()
	return nil
}

// Approvals prints the approvals journaled by the connected account.
func (a *App) Approvals(ctx context.Context) error {
	if !a.isConnected() {
		return a.report(ctx, "approvals", common.ErrNotConnected)
	}
	list, err := a.certs.Approvals(ctx, a.session.Account())
	if err != nil {
		return a.report(ctx, "approvals", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No approvals.")
		return nil
	}
	for _, ap := range list {
		fmt.Fprintf(a.out, "%s  %s  %s\n", ap.ApprovedAt.Format("2006-01-02 15:04"), ap.ObjectID, ap.TxDigest)
	}
	return nil
}
