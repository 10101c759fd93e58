package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/client/models"
	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/metrics"
)

// ListActivity lists the certificates account minted (ModeSender) or may
// approve (ModeApprover), in the order the chain returns them. An empty
// account yields an empty list.
func (s *certificateService) ListActivity(ctx context.Context, account string, mode models.Mode) (views []models.CertificateView, err error) {
	if account == "" {
		return []models.CertificateView{}, nil
	}

	defer func(start time.Time) { s.metrics.Observe(metrics.OpActivity, start, err) }(time.Now())

	switch mode {
	case models.ModeSender:
		return s.listSent(ctx, account)
	case models.ModeApprover:
		return s.listApprovable(ctx, account)
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

func (s *certificateService) listSent(ctx context.Context, account string) ([]models.CertificateView, error) {
	fn := s.function(common.MintFunction)
	views := []models.CertificateView{}
	fallbacks := 0

	cursor := ""
	for page := 0; page < s.maxPages; page++ {
		p, err := s.chain.QueryTransactionBlocks(ctx, fn, cursor, s.pageLimit)
		if err != nil {
			return nil, queryError("query transactions", err)
		}
		s.logger.Debug(ctx, "transaction page", "page", page, "items", len(p.Data), "has_next", p.HasNextPage)

		for i := range p.Data {
			tx := &p.Data[i]
			if !sameAddress(tx.Sender(), account) {
				continue
			}
			v := s.sentView(ctx, tx, fn, account)
			if !v.Enriched {
				fallbacks++
			}
			views = append(views, v)
		}

		if !p.HasNextPage || p.Cursor() == "" {
			break
		}
		cursor = p.Cursor()
	}

	s.metrics.Records(len(views), fallbacks)
	return views, nil
}

// sentView builds a record from the mint transaction and then tries to
// replace its fields with the live object state. The transaction log and
// the object store may disagree for a while, so a failed lookup keeps the
// transaction arguments.
func (s *certificateService) sentView(ctx context.Context, tx *client.TransactionBlock, fn client.MoveFunction, account string) models.CertificateView {
	v := models.CertificateView{
		Certificate: models.Certificate{
			Sender:   tx.Sender(),
			MintedAt: tx.Timestamp(),
			TxDigest: tx.Digest,
		},
	}
	if args, ok := tx.MoveCallArgs(fn); ok {
		applyMintArgs(&v.Certificate, args)
	}

	objectID, ok := tx.CreatedObject(s.structType())
	if !ok {
		s.logger.Warn(ctx, common.ErrEnrichmentFailed.Error(), "digest", tx.Digest, "reason", "no created object")
	} else {
		v.ObjectID = objectID
		obj, err := s.chain.GetObject(ctx, objectID)
		switch {
		case err != nil:
			s.logger.Warn(ctx, common.ErrEnrichmentFailed.Error(), "digest", tx.Digest, "object_id", objectID, "error", err)
		case obj.Content == nil:
			s.logger.Warn(ctx, common.ErrEnrichmentFailed.Error(), "digest", tx.Digest, "object_id", objectID, "reason", "no content")
		default:
			applyFields(&v, obj.Content)
			v.Enriched = true
		}
	}

	// only the recipient can act on a certificate
	v.CanApprove = sameAddress(v.Recipient, account)
	return v
}

func (s *certificateService) listApprovable(ctx context.Context, account string) ([]models.CertificateView, error) {
	structType := s.structType()
	views := []models.CertificateView{}

	cursor := ""
	for page := 0; page < s.maxPages; page++ {
		p, err := s.chain.GetOwnedObjects(ctx, account, structType, cursor, s.pageLimit)
		if err != nil {
			return nil, queryError("owned objects", err)
		}

		for _, item := range p.Data {
			obj := item.Data
			if obj == nil || obj.Content == nil || !strings.HasPrefix(obj.Content.Type, structType) {
				continue
			}
			v := models.CertificateView{
				Certificate: models.Certificate{ObjectID: obj.ObjectID, Recipient: account},
				Enriched:    true,
			}
			applyFields(&v, obj.Content)
			if !v.CanApprove {
				continue
			}
			views = append(views, v)
		}

		if !p.HasNextPage || p.Cursor() == "" {
			break
		}
		cursor = p.Cursor()
	}

	s.metrics.Records(len(views), 0)
	return views, nil
}

// applyMintArgs maps mint_certificate arguments onto c. Older deployments
// took (name, walrus_cid, recipient).
func applyMintArgs(c *models.Certificate, args []string) {
	switch len(args) {
	case 4:
		c.Title, c.Description, c.ContentAddress, c.Recipient = args[0], args[1], args[2], args[3]
	case 3:
		c.Title, c.Description, c.ContentAddress, c.Recipient = args[0], args[0], args[1], args[2]
	}
}

// applyFields copies the Move object fields onto v. "title"/"description"
// are canonical; the legacy "name" fills whichever is missing.
func applyFields(v *models.CertificateView, content *client.MoveContent) {
	name, _ := content.StringField("name")

	if title, ok := content.StringField("title"); ok && title != "" {
		v.Title = title
	} else if name != "" {
		v.Title = name
	}
	if desc, ok := content.StringField("description"); ok && desc != "" {
		v.Description = desc
	} else if name != "" {
		v.Description = name
	}
	if cid, ok := content.StringField("walrus_cid"); ok && cid != "" {
		v.ContentAddress = cid
	}
	if r, ok := content.StringField("recipient"); ok && r != "" {
		v.Recipient = r
	}
	if sender, ok := content.StringField("sender"); ok && sender != "" && v.Sender == "" {
		v.Sender = sender
	}

	approved, _ := content.BoolField("approved")
	// approval is monotonic; a stale read must not undo one already seen
	v.Approved = v.Approved || approved

	v.CanApprove = true
	if can, ok := content.BoolField("can_approve"); ok {
		v.CanApprove = can
	}
}

func sameAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
