// Package services contains server-side business logic: the document
// lifecycle, permissions, share links, section queries, stats and admin
// moderation. Every method takes the acting user explicitly and returns
// errors classified under one of the common kinds.
package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/objectstore"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/documents"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/settings"
	"github.com/google/uuid"
)

// ObjectStore holds document bytes under Document.StorageKey.
type ObjectStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string) (*objectstore.Presigned, error)
}

// StatsInvalidator drops cached aggregates after a write.
type StatsInvalidator interface {
	Invalidate(userIDs ...string)
	InvalidateAll()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(...string) {}
func (noopInvalidator) InvalidateAll()       {}

// Content is a document's bytes together with its metadata. The caller
// closes Body.
type Content struct {
	Document *models.Document
	Body     io.ReadCloser
}

var newID = uuid.NewString

func requireActor(op string, actor models.Actor) error {
	if actor.ID == "" {
		return common.NewError(common.ErrUnauthorized, op, errors.New("no actor"))
	}
	return nil
}

func invalid(op string, err error) *common.Error {
	return common.NewError(common.ErrValidation, op, err)
}

func loadDocument(ctx context.Context, repo documents.Repository, op, id string) (*models.Document, error) {
	doc, err := repo.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, op, nil).WithDocument(id)
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithDocument(id)
	}
	return doc, nil
}

func requireStatus(op string, doc *models.Document, want models.DocumentStatus) error {
	if doc.Status != want {
		return common.NewError(common.ErrInvalidState, op, nil).WithDocument(doc.ID).WithStatus(string(doc.Status))
	}
	return nil
}

// currentSettings reads the settings record, falling back to defaults
// without persisting them.
func currentSettings(ctx context.Context, repo settings.Repository, now time.Time) (*models.Settings, error) {
	s, err := repo.Get(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return models.DefaultSettings(now), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func recordActivity(ctx context.Context, tx repomanager.Repos, at time.Time, documentID, userID string, action models.ActivityAction, details string) error {
	return tx.Activities().Create(ctx, &models.Activity{
		ID:         newID(),
		DocumentID: documentID,
		UserID:     userID,
		Action:     action,
		Details:    details,
		CreatedAt:  at,
	})
}
