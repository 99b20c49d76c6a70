// Package users persists the local mirror of accounts owned by the external
// identity subsystem.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	// Upsert stores an account pushed by the identity subsystem.
	Upsert(ctx context.Context, u *models.User) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Find(ctx context.Context, q models.UserQuery) ([]*models.User, error)
	// Count ignores Limit, Offset and sorting.
	Count(ctx context.Context, q models.UserQuery) (int64, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
