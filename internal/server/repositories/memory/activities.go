package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type ActivityRepository struct {
	s  *Store
	tx bool
}

func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	defer r.s.lockWrite(r.tx)()

	r.s.data.activities = append(r.s.data.activities, *a)
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, limit, offset int) ([]*models.Activity, error) {
	r.s.mu.Lock()
	all := make([]*models.Activity, 0, len(r.s.data.activities))
	for _, a := range r.s.data.activities {
		act := a
		all = append(all, &act)
	}
	r.s.mu.Unlock()

	slices.SortFunc(all, func(a, b *models.Activity) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return append(make([]*models.Activity, 0), window(all, limit, offset)...), nil
}

func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return int64(len(r.s.data.activities)), nil
}

func errDuplicate(kind, id string) error {
	return fmt.Errorf("duplicate %s %q", kind, id)
}
