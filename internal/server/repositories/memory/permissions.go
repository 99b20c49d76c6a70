package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type PermissionRepository struct {
	s  *Store
	tx bool
}

func (r *PermissionRepository) Upsert(ctx context.Context, p *models.Permission) (*models.Permission, error) {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.docs[p.DocumentID]; !ok {
		return nil, common.ErrNotFound
	}
	key := permKey{documentID: p.DocumentID, userID: p.UserID}
	stored, ok := r.s.data.perms[key]
	if ok {
		stored.Level = p.Level
	} else {
		stored = *p
	}
	r.s.data.perms[key] = stored
	return &stored, nil
}

func (r *PermissionRepository) UpdateLevel(ctx context.Context, documentID, userID string, level models.AccessLevel) (*models.Permission, error) {
	defer r.s.lockWrite(r.tx)()

	key := permKey{documentID: documentID, userID: userID}
	stored, ok := r.s.data.perms[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	stored.Level = level
	r.s.data.perms[key] = stored
	return &stored, nil
}

func (r *PermissionRepository) Get(ctx context.Context, documentID, userID string) (*models.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.perms[permKey{documentID: documentID, userID: userID}]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, documentID, userID string) (bool, error) {
	defer r.s.lockWrite(r.tx)()

	key := permKey{documentID: documentID, userID: userID}
	_, ok := r.s.data.perms[key]
	delete(r.s.data.perms, key)
	return ok, nil
}

func (r *PermissionRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.Permission, error) {
	r.s.mu.Lock()
	result := make([]*models.Permission, 0)
	for k, p := range r.s.data.perms {
		if k.documentID == documentID {
			perm := p
			result = append(result, &perm)
		}
	}
	r.s.mu.Unlock()

	slices.SortFunc(result, func(a, b *models.Permission) int {
		if c := a.GrantedAt.Compare(b.GrantedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return result, nil
}

func (r *PermissionRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	defer r.s.lockWrite(r.tx)()

	for k := range r.s.data.perms {
		if k.documentID == documentID {
			delete(r.s.data.perms, k)
		}
	}
	return nil
}

func (r *PermissionRepository) DeleteByUser(ctx context.Context, userID string) error {
	defer r.s.lockWrite(r.tx)()

	for k := range r.s.data.perms {
		if k.userID == userID {
			delete(r.s.data.perms, k)
		}
	}
	return nil
}
