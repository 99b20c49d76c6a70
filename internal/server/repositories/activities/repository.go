// Package activities persists the document audit trail.
package activities

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Activity) error
	// List is ordered newest first, then by id.
	List(ctx context.Context, limit, offset int) ([]*models.Activity, error)
	Count(ctx context.Context) (int64, error)
}
