package memory

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type ShareLinkRepository struct {
	s  *Store
	tx bool
}

func (r *ShareLinkRepository) GetByDocument(ctx context.Context, documentID string) (*models.ShareLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.data.links[documentID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &l, nil
}

func (r *ShareLinkRepository) GetByLinkID(ctx context.Context, linkID string) (*models.ShareLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, l := range r.s.data.links {
		if l.LinkID == linkID {
			return &l, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *ShareLinkRepository) Upsert(ctx context.Context, link *models.ShareLink) (*models.ShareLink, error) {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.docs[link.DocumentID]; !ok {
		return nil, common.ErrNotFound
	}
	stored, ok := r.s.data.links[link.DocumentID]
	if ok {
		stored.AccessLevel = link.AccessLevel
		stored.UpdatedAt = link.UpdatedAt
	} else {
		for _, other := range r.s.data.links {
			if other.LinkID == link.LinkID {
				return nil, errDuplicate("share link", link.LinkID)
			}
		}
		stored = *link
	}
	r.s.data.links[link.DocumentID] = stored
	return &stored, nil
}

func (r *ShareLinkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	defer r.s.lockWrite(r.tx)()

	delete(r.s.data.links, documentID)
	return nil
}
