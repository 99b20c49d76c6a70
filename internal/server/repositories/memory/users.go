package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type UserRepository struct {
	s  *Store
	tx bool
}

func (r *UserRepository) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	defer r.s.lockWrite(r.tx)()

	stored := *u
	if existing, ok := r.s.data.users[u.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.s.data.users[u.ID] = stored
	return &stored, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) Find(ctx context.Context, q models.UserQuery) ([]*models.User, error) {
	r.s.mu.Lock()
	matched := r.match(q)
	r.s.mu.Unlock()

	slices.SortFunc(matched, userOrder(q.SortBy, q.SortDir))
	return append(make([]*models.User, 0), window(matched, q.Limit, q.Offset)...), nil
}

func (r *UserRepository) Count(ctx context.Context, q models.UserQuery) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return int64(len(r.match(q))), nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) (*models.User, error) {
	defer r.s.lockWrite(r.tx)()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Status = status
	r.s.data.users[id] = u
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *UserRepository) match(q models.UserQuery) []*models.User {
	search := strings.ToLower(q.Search)
	result := make([]*models.User, 0)
	for _, u := range r.s.data.users {
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if q.Status != "" && u.Status != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Username), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		user := u
		result = append(result, &user)
	}
	return result
}

func userOrder(sortBy models.UserSort, dir models.SortDir) func(a, b *models.User) int {
	primary := func(a, b *models.User) int {
		switch sortBy {
		case models.UserSortEmail:
			return cmp.Compare(a.Email, b.Email)
		case models.UserSortRole:
			return cmp.Compare(a.Role, b.Role)
		case models.UserSortStatus:
			return cmp.Compare(a.Status, b.Status)
		case models.UserSortCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return cmp.Compare(a.Username, b.Username)
		}
	}
	return func(a, b *models.User) int {
		c := primary(a, b)
		if dir == models.SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}
