package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/objectstore"
	"github.com/dmitrijs2005/gophdocs/internal/server/policy"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateDocumentInput is the metadata of a new upload.
type CreateDocumentInput struct {
	Title     string `json:"title"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
	SizeBytes int64  `json:"sizeBytes"`
	FolderID  string `json:"folderId"`
}

func (in CreateDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(2, 255)),
		validation.Field(&in.FileName, validation.Required, validation.RuneLength(2, 255)),
		validation.Field(&in.FileType, validation.RuneLength(0, 255)),
		validation.Field(&in.SizeBytes, validation.Min(int64(0))),
	)
}

func validateTitle(title string) error {
	return validation.Errors{
		"title": validation.Validate(title, validation.Required, validation.RuneLength(2, 255)),
	}.Filter()
}

// Documents owns document metadata and its lifecycle:
// ACTIVE -> TRASHED -> ACTIVE (restore) or removed (permanent delete).
type Documents struct {
	repos   repomanager.RepositoryManager
	objects ObjectStore
	stats   StatsInvalidator
	log     logging.Logger
	now     timex.Clock
}

func NewDocuments(repos repomanager.RepositoryManager, objects ObjectStore, stats StatsInvalidator, log logging.Logger) *Documents {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &Documents{
		repos:   repos,
		objects: objects,
		stats:   stats,
		log:     log.With("component", "documents"),
		now:     timex.UTCNow,
	}
}

// Create stores a new ACTIVE document owned by actor. The owner's ACTIVE
// total plus the new size must fit the configured quota.
func (d *Documents) Create(ctx context.Context, actor models.Actor, in CreateDocumentInput) (*models.Document, error) {
	const op = "documents.Create"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	now := d.now()
	doc := &models.Document{
		ID:        newID(),
		OwnerID:   actor.ID,
		Title:     in.Title,
		FileName:  in.FileName,
		FileType:  in.FileType,
		SizeBytes: in.SizeBytes,
		Status:    models.StatusActive,
		CreatedAt: now,
	}

	err := d.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		s, err := currentSettings(ctx, tx.Settings(), now)
		if err != nil {
			return err
		}
		_, used, err := tx.Documents().Totals(ctx, models.DocumentQuery{OwnerID: actor.ID, Status: models.StatusActive})
		if err != nil {
			return err
		}
		if used+in.SizeBytes > s.QuotaBytes {
			return invalid(op, fmt.Errorf("storage quota exceeded: %d of %d bytes used", used, s.QuotaBytes)).WithUser(actor.ID)
		}
		if doc.FolderID, err = folderFor(ctx, tx.Folders(), op, actor, actor.ID, in.FolderID); err != nil {
			return err
		}

		if err := tx.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return recordActivity(ctx, tx, now, doc.ID, actor.ID, models.ActionUploaded, doc.FileName)
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	d.stats.Invalidate(actor.ID)
	d.log.Info(ctx, "document created", "document_id", doc.ID, "owner_id", actor.ID, "size_bytes", doc.SizeBytes)
	return doc, nil
}

// Get returns a document the actor may view.
func (d *Documents) Get(ctx context.Context, actor models.Actor, id string) (*models.Document, error) {
	const op = "documents.Get"

	doc, err := loadDocument(ctx, d.repos.Documents(), op, id)
	if err != nil {
		return nil, err
	}
	if _, err := d.authorize(ctx, op, actor, doc, policy.CanView); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Documents) Rename(ctx context.Context, actor models.Actor, id, title string) (*models.Document, error) {
	const op = "documents.Rename"

	if err := validateTitle(title); err != nil {
		return nil, invalid(op, err).WithDocument(id)
	}

	var renamed *models.Document
	err := d.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		doc, err := loadDocument(ctx, tx.Documents(), op, id)
		if err != nil {
			return err
		}
		if err := policy.RequireMutate(op, actor, doc); err != nil {
			return err
		}
		renamed, err = tx.Documents().UpdateTitle(ctx, id, title)
		if err != nil {
			return err
		}
		return recordActivity(ctx, tx, d.now(), id, actor.ID, models.ActionRenamed, fmt.Sprintf("%s -> %s", doc.Title, title))
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	d.log.Info(ctx, "document renamed", "document_id", id, "actor_id", actor.ID)
	return renamed, nil
}

// Move files an ACTIVE document into one of its owner's folders. An empty
// folderID moves it back to the root.
func (d *Documents) Move(ctx context.Context, actor models.Actor, id, folderID string) (*models.Document, error) {
	const op = "documents.Move"

	var moved *models.Document
	err := d.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		doc, err := loadDocument(ctx, tx.Documents(), op, id)
		if err != nil {
			return err
		}
		if err := policy.RequireMutate(op, actor, doc); err != nil {
			return err
		}
		if err := requireStatus(op, doc, models.StatusActive); err != nil {
			return err
		}
		folder, err := folderFor(ctx, tx.Folders(), op, actor, doc.OwnerID, folderID)
		if err != nil {
			return err
		}
		moved, err = tx.Documents().Move(ctx, id, folder)
		if err != nil {
			return err
		}
		details := "root"
		if folder != nil {
			details = *folder
		}
		return recordActivity(ctx, tx, d.now(), id, actor.ID, models.ActionMoved, details)
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	d.log.Info(ctx, "document moved", "document_id", id, "actor_id", actor.ID, "folder_id", folderID)
	return moved, nil
}

// MoveToTrash moves an ACTIVE document to the trash.
func (d *Documents) MoveToTrash(ctx context.Context, actor models.Actor, id string) (*models.Document, error) {
	return d.transition(ctx, "documents.MoveToTrash", actor, id, models.StatusActive, models.StatusTrashed, models.ActionTrashed)
}

// Restore brings a TRASHED document back and clears trashedAt.
func (d *Documents) Restore(ctx context.Context, actor models.Actor, id string) (*models.Document, error) {
	return d.transition(ctx, "documents.Restore", actor, id, models.StatusTrashed, models.StatusActive, models.ActionRestored)
}

func (d *Documents) transition(ctx context.Context, op string, actor models.Actor, id string, from, to models.DocumentStatus, action models.ActivityAction) (*models.Document, error) {
	now := d.now()

	var moved *models.Document
	err := d.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		doc, err := loadDocument(ctx, tx.Documents(), op, id)
		if err != nil {
			return err
		}
		if err := policy.RequireMutate(op, actor, doc); err != nil {
			return err
		}
		if err := requireStatus(op, doc, from); err != nil {
			return err
		}

		var trashedAt *time.Time
		if to == models.StatusTrashed {
			trashedAt = &now
		}
		moved, err = tx.Documents().Transition(ctx, id, from, to, trashedAt)
		if errors.Is(err, common.ErrNotFound) {
			// Lost a race with another transition.
			return common.NewError(common.ErrInvalidState, op, nil).WithDocument(id)
		}
		if err != nil {
			return err
		}
		return recordActivity(ctx, tx, now, id, actor.ID, action, "")
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	d.stats.Invalidate(moved.OwnerID)
	d.log.Info(ctx, "document status changed", "document_id", id, "actor_id", actor.ID, "from", from, "to", to)
	return moved, nil
}

// PermanentlyDelete removes a TRASHED document, its bytes, its permissions
// and its share link. ACTIVE documents must be trashed first.
func (d *Documents) PermanentlyDelete(ctx context.Context, actor models.Actor, id string) error {
	const op = "documents.PermanentlyDelete"

	doc, err := loadDocument(ctx, d.repos.Documents(), op, id)
	if err != nil {
		return err
	}
	if err := policy.RequireMutate(op, actor, doc); err != nil {
		return err
	}
	if err := requireStatus(op, doc, models.StatusTrashed); err != nil {
		return err
	}
	return d.remove(ctx, op, actor.ID, doc, models.ActionDeleted)
}

// remove deletes the bytes first and then the metadata, so a failed object
// delete leaves the document in place for a retry.
func (d *Documents) remove(ctx context.Context, op, actorID string, doc *models.Document, action models.ActivityAction) error {
	if err := d.objects.Delete(ctx, doc.StorageKey()); err != nil {
		d.log.Warn(ctx, "object delete failed", "document_id", doc.ID, "error", err)
		return common.NewError(common.ErrTransientIO, op, err).WithDocument(doc.ID)
	}

	now := d.now()
	err := d.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		if err := tx.Permissions().DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := tx.ShareLinks().DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := tx.Documents().Delete(ctx, doc.ID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewError(common.ErrNotFound, op, nil).WithDocument(doc.ID)
			}
			return err
		}
		doc.PermanentlyDeletedAt = &now
		doc.Status = models.StatusDeleted
		return recordActivity(ctx, tx, now, doc.ID, actorID, action, doc.FileName)
	})
	if err != nil {
		return common.Classify(op, err)
	}

	d.stats.Invalidate(doc.OwnerID)
	d.log.Info(ctx, "document permanently deleted", "document_id", doc.ID, "actor_id", actorID, "action", action)
	return nil
}

// UploadURL presigns a PUT of the document bytes for the owner.
func (d *Documents) UploadURL(ctx context.Context, actor models.Actor, id string) (*objectstore.Presigned, error) {
	const op = "documents.UploadURL"

	doc, err := loadDocument(ctx, d.repos.Documents(), op, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireMutate(op, actor, doc); err != nil {
		return nil, err
	}
	if err := requireStatus(op, doc, models.StatusActive); err != nil {
		return nil, err
	}

	p, err := d.objects.PresignPut(ctx, doc.StorageKey(), doc.FileType)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithDocument(id)
	}
	return p, nil
}

// ViewBytes opens the document for inline preview.
func (d *Documents) ViewBytes(ctx context.Context, actor models.Actor, id string) (*Content, error) {
	return d.open(ctx, "documents.ViewBytes", actor, id, policy.CanView)
}

// DownloadBytes opens the document as an attachment. Non-owners need
// DOWNLOAD or EDIT.
func (d *Documents) DownloadBytes(ctx context.Context, actor models.Actor, id string) (*Content, error) {
	return d.open(ctx, "documents.DownloadBytes", actor, id, policy.CanDownload)
}

type accessRule func(models.Actor, *models.Document, *models.Permission) bool

func (d *Documents) open(ctx context.Context, op string, actor models.Actor, id string, allow accessRule) (*Content, error) {
	doc, err := loadDocument(ctx, d.repos.Documents(), op, id)
	if err != nil {
		return nil, err
	}
	if _, err := d.authorize(ctx, op, actor, doc, allow); err != nil {
		return nil, err
	}
	return openContent(ctx, d.objects, op, doc)
}

// authorize applies allow, looking up the actor's grant when the actor is
// neither owner nor admin.
func (d *Documents) authorize(ctx context.Context, op string, actor models.Actor, doc *models.Document, allow accessRule) (*models.Permission, error) {
	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	if policy.CanMutateDocument(actor, doc) {
		return nil, nil
	}

	perm, err := d.repos.Permissions().Get(ctx, doc.ID, actor.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		perm = nil
	case err != nil:
		return nil, common.NewError(common.ErrTransientIO, op, err).WithDocument(doc.ID)
	}

	if allow(actor, doc, perm) {
		return perm, nil
	}
	if perm != nil && doc.Status != models.StatusActive {
		return nil, common.NewError(common.ErrInvalidState, op, nil).WithDocument(doc.ID).WithStatus(string(doc.Status))
	}
	return nil, common.NewError(common.ErrUnauthorized, op, nil).WithDocument(doc.ID).WithUser(actor.ID)
}

func openContent(ctx context.Context, objects ObjectStore, op string, doc *models.Document) (*Content, error) {
	body, err := objects.Get(ctx, doc.StorageKey())
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, op, errors.New("document bytes not uploaded")).WithDocument(doc.ID)
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithDocument(doc.ID)
	}
	return &Content{Document: doc, Body: body}, nil
}
