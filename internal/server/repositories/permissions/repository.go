// Package permissions persists per-(document, user) access grants.
package permissions

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	// Upsert inserts the grant or updates the level of the existing one.
	// The original grantedAt is kept on update.
	Upsert(ctx context.Context, p *models.Permission) (*models.Permission, error)
	UpdateLevel(ctx context.Context, documentID, userID string, level models.AccessLevel) (*models.Permission, error)
	Get(ctx context.Context, documentID, userID string) (*models.Permission, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, documentID, userID string) (bool, error)
	// ListByDocument is ordered by grantedAt, then userID.
	ListByDocument(ctx context.Context, documentID string) ([]*models.Permission, error)
	DeleteByDocument(ctx context.Context, documentID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
