package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type DocumentRepository struct {
	s  *Store
	tx bool
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.docs[doc.ID]; ok {
		return errDuplicate("document", doc.ID)
	}
	r.s.data.docs[doc.ID] = *doc
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.data.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &d, nil
}

func (r *DocumentRepository) UpdateTitle(ctx context.Context, id, title string) (*models.Document, error) {
	defer r.s.lockWrite(r.tx)()

	d, ok := r.s.data.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	d.Title = title
	r.s.data.docs[id] = d
	return &d, nil
}

func (r *DocumentRepository) Move(ctx context.Context, id string, folderID *string) (*models.Document, error) {
	defer r.s.lockWrite(r.tx)()

	d, ok := r.s.data.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	d.FolderID = folderID
	r.s.data.docs[id] = d
	return &d, nil
}

func (r *DocumentRepository) Transition(ctx context.Context, id string, from, to models.DocumentStatus, trashedAt *time.Time) (*models.Document, error) {
	defer r.s.lockWrite(r.tx)()

	d, ok := r.s.data.docs[id]
	if !ok || d.Status != from {
		return nil, common.ErrNotFound
	}
	d.Status = to
	d.TrashedAt = nil
	if trashedAt != nil {
		t := *trashedAt
		d.TrashedAt = &t
	}
	r.s.data.docs[id] = d
	return &d, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.docs[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.data.docs, id)
	// Mirrors ON DELETE CASCADE on permissions and share_links.
	for k := range r.s.data.perms {
		if k.documentID == id {
			delete(r.s.data.perms, k)
		}
	}
	delete(r.s.data.links, id)
	return nil
}

func (r *DocumentRepository) Find(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error) {
	r.s.mu.Lock()
	matched := r.match(q)
	r.s.mu.Unlock()

	slices.SortFunc(matched, documentOrder(q.SortBy, q.SortDir))

	return append(make([]*models.Document, 0), window(matched, q.Limit, q.Offset)...), nil
}

func (r *DocumentRepository) Totals(ctx context.Context, q models.DocumentQuery) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count, bytes int64
	for _, d := range r.match(q) {
		count++
		bytes += d.SizeBytes
	}
	return count, bytes, nil
}

func (r *DocumentRepository) CountShared(ctx context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	shared := map[string]struct{}{}
	for k := range r.s.data.perms {
		shared[k.documentID] = struct{}{}
	}
	var n int64
	for _, d := range r.s.data.docs {
		if _, ok := shared[d.ID]; ok && d.OwnerID == ownerID && d.Status == models.StatusActive {
			n++
		}
	}
	return n, nil
}

// match must be called with the store lock held.
func (r *DocumentRepository) match(q models.DocumentQuery) []*models.Document {
	search := strings.ToLower(q.Search)
	result := make([]*models.Document, 0)
	for _, d := range r.s.data.docs {
		if q.OwnerID != "" && d.OwnerID != q.OwnerID {
			continue
		}
		if q.Status != "" && d.Status != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Title), search) && !strings.Contains(strings.ToLower(d.FileName), search) {
			continue
		}
		if q.CreatedAfter != nil && d.CreatedAt.Before(*q.CreatedAfter) {
			continue
		}
		if q.TrashedBefore != nil && (d.TrashedAt == nil || !d.TrashedAt.Before(*q.TrashedBefore)) {
			continue
		}
		if len(q.Extensions) > 0 && !hasExtension(d.FileName, q.Extensions) {
			continue
		}
		if q.FolderID != "" && (d.FolderID == nil || *d.FolderID != q.FolderID) {
			continue
		}
		if q.SharedWith != "" {
			if d.OwnerID == q.SharedWith {
				continue
			}
			if _, ok := r.s.data.perms[permKey{documentID: d.ID, userID: q.SharedWith}]; !ok {
				continue
			}
		}
		doc := d
		result = append(result, &doc)
	}
	return result
}

func hasExtension(fileName string, exts []string) bool {
	name := strings.ToLower(fileName)
	for _, ext := range exts {
		if strings.HasSuffix(name, "."+strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func documentOrder(sortBy models.DocumentSort, dir models.SortDir) func(a, b *models.Document) int {
	primary := func(a, b *models.Document) int {
		switch sortBy {
		case models.DocumentSortTitle:
			return cmp.Compare(a.Title, b.Title)
		case models.DocumentSortSize:
			return cmp.Compare(a.SizeBytes, b.SizeBytes)
		case models.DocumentSortTrashedAt:
			return compareTimePtr(a.TrashedAt, b.TrashedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	return func(a, b *models.Document) int {
		c := primary(a, b)
		if dir != models.SortAsc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}

// compareTimePtr sorts nil after any time, as Postgres does for NULLS in ASC.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
