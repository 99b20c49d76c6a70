// Package settings persists the singleton admin settings record.
package settings

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrNotFound until the record is first saved.
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}
