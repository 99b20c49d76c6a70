// Package sharelinks persists the public share link of a document.
package sharelinks

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	GetByDocument(ctx context.Context, documentID string) (*models.ShareLink, error)
	GetByLinkID(ctx context.Context, linkID string) (*models.ShareLink, error)
	// Upsert creates the link or changes its access level. LinkID and
	// CreatedAt of an existing link are kept.
	Upsert(ctx context.Context, link *models.ShareLink) (*models.ShareLink, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
