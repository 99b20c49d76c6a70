package services

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/policy"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/blake2b"
)

const linkIDSize = 16

// ShareLinks manages the single public link of a document. Link access is
// independent of the permission ledger: resolving a link never creates a
// grant.
type ShareLinks struct {
	repos   repomanager.RepositoryManager
	objects ObjectStore
	key     [32]byte
	log     logging.Logger
	now     timex.Clock
}

func NewShareLinks(repos repomanager.RepositoryManager, objects ObjectStore, secret []byte, log logging.Logger) *ShareLinks {
	return &ShareLinks{
		repos:   repos,
		objects: objects,
		key:     blake2b.Sum256(secret),
		log:     log.With("component", "sharelinks"),
		now:     timex.UTCNow,
	}
}

// LinkID derives the public id of a document's link. The same document and
// secret always give the same id.
func (s *ShareLinks) LinkID(documentID string) string {
	h, err := blake2b.New(linkIDSize, s.key[:])
	if err != nil {
		// Only reachable with a key longer than 64 bytes.
		panic(err)
	}
	h.Write([]byte(documentID))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// EnsureLink creates the link or changes its access level. Asking for the
// current level returns the stored link untouched.
func (s *ShareLinks) EnsureLink(ctx context.Context, actor models.Actor, documentID string, level models.AccessLevel) (*models.ShareLink, error) {
	const op = "sharelinks.EnsureLink"

	if err := validation.Validate(level, validation.Required, validation.In(models.LinkLevels...)); err != nil {
		return nil, invalid(op, validation.Errors{"accessLevel": err}).WithDocument(documentID)
	}

	var link *models.ShareLink
	changed := false
	err := s.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		doc, err := loadDocument(ctx, tx.Documents(), op, documentID)
		if err != nil {
			return err
		}
		if err := policy.RequireManagePermissions(op, actor, doc); err != nil {
			return err
		}
		if err := requireStatus(op, doc, models.StatusActive); err != nil {
			return err
		}

		existing, err := tx.ShareLinks().GetByDocument(ctx, documentID)
		switch {
		case err == nil && existing.AccessLevel == level:
			link = existing
			return nil
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return err
		}

		now := s.now()
		link, err = tx.ShareLinks().Upsert(ctx, &models.ShareLink{
			DocumentID:  documentID,
			LinkID:      s.LinkID(documentID),
			AccessLevel: level,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		changed = true
		return recordActivity(ctx, tx, now, documentID, actor.ID, models.ActionShared, "level="+string(level))
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	if changed {
		s.log.Info(ctx, "share link saved", "document_id", documentID, "link_id", link.LinkID, "level", level, "actor_id", actor.ID)
	}
	return link, nil
}

// GetLink is a public lookup by document id.
func (s *ShareLinks) GetLink(ctx context.Context, documentID string) (*models.ShareLink, error) {
	const op = "sharelinks.GetLink"

	link, err := s.repos.ShareLinks().GetByDocument(ctx, documentID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, op, nil).WithDocument(documentID)
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithDocument(documentID)
	}
	return link, nil
}

// Resolve finds the link and its ACTIVE document.
func (s *ShareLinks) Resolve(ctx context.Context, linkID string) (*models.SharedDocument, error) {
	const op = "sharelinks.Resolve"

	link, err := s.repos.ShareLinks().GetByLinkID(ctx, linkID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, op, errors.New("unknown link"))
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}

	doc, err := loadDocument(ctx, s.repos.Documents(), op, link.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(op, doc, models.StatusActive); err != nil {
		return nil, err
	}
	return &models.SharedDocument{Link: link, Document: doc}, nil
}

// ViewBytes opens the linked document for preview.
func (s *ShareLinks) ViewBytes(ctx context.Context, linkID string) (*Content, error) {
	const op = "sharelinks.ViewBytes"

	shared, err := s.Resolve(ctx, linkID)
	if err != nil {
		return nil, err
	}
	return openContent(ctx, s.objects, op, shared.Document)
}

// DownloadBytes requires a DOWNLOAD link.
func (s *ShareLinks) DownloadBytes(ctx context.Context, linkID string) (*Content, error) {
	const op = "sharelinks.DownloadBytes"

	shared, err := s.Resolve(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if !shared.Link.AccessLevel.AllowsDownload() {
		return nil, common.NewError(common.ErrUnauthorized, op, errors.New("link does not allow download")).WithDocument(shared.Document.ID)
	}
	return openContent(ctx, s.objects, op, shared.Document)
}
