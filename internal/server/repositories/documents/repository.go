// Package documents persists document metadata and answers the filtered,
// ordered queries behind the section views.
package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	// Get returns common.ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*models.Document, error)
	UpdateTitle(ctx context.Context, id, title string) (*models.Document, error)
	// Move files the document in folderID, or in the owner's root when nil.
	Move(ctx context.Context, id string, folderID *string) (*models.Document, error)
	// Transition moves a document from one status to another only if it is
	// currently in from. It returns common.ErrNotFound when no row matched,
	// so callers re-read to tell a missing row from a wrong status.
	Transition(ctx context.Context, id string, from, to models.DocumentStatus, trashedAt *time.Time) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error)
	// Totals returns the number of matching documents and their summed size.
	// Limit and Offset are ignored.
	Totals(ctx context.Context, q models.DocumentQuery) (count int64, bytes int64, err error)
	// CountShared counts ACTIVE documents of ownerID with at least one
	// permission row.
	CountShared(ctx context.Context, ownerID string) (int64, error)
}
