package memory

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type SettingsRepository struct {
	s  *Store
	tx bool
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.data.settings == nil {
		return nil, common.ErrNotFound
	}
	v := *r.s.data.settings
	return &v, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	defer r.s.lockWrite(r.tx)()

	v := *s
	r.s.data.settings = &v
	return nil
}
