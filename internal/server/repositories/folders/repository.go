// Package folders persists the folders owners file their documents in.
package folders

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.Folder) error
	// Get returns common.ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*models.Folder, error)
	// Update stores Name, ParentID and UpdatedAt of an existing folder.
	Update(ctx context.Context, f *models.Folder) (*models.Folder, error)
	Delete(ctx context.Context, id string) error
	// List returns the folders of ownerID directly under parentID, or all of
	// them when parentID is empty. Ordered by name, then id.
	List(ctx context.Context, ownerID, parentID string) ([]*models.Folder, error)
	// CountContents counts child folders and documents filed directly in id.
	CountContents(ctx context.Context, id string) (folders int64, documents int64, err error)
	DeleteByOwner(ctx context.Context, ownerID string) error
}
