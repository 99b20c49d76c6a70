package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/policy"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FolderInput names a folder and places it. An empty ParentID is the
// owner's root.
type FolderInput struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (in FolderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 255)),
	)
}

// Folders manages the folder tree of each owner. Only the owner or an
// ADMIN sees or changes a folder.
type Folders struct {
	repos repomanager.RepositoryManager
	log   logging.Logger
	now   timex.Clock
}

func NewFolders(repos repomanager.RepositoryManager, log logging.Logger) *Folders {
	return &Folders{repos: repos, log: log.With("component", "folders"), now: timex.UTCNow}
}

func (s *Folders) Create(ctx context.Context, actor models.Actor, in FolderInput) (*models.Folder, error) {
	const op = "folders.Create"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	now := s.now()
	f := &models.Folder{ID: newID(), OwnerID: actor.ID, Name: in.Name, CreatedAt: now, UpdatedAt: now}
	err := s.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		parent, err := folderFor(ctx, tx.Folders(), op, actor, actor.ID, in.ParentID)
		if err != nil {
			return err
		}
		f.ParentID = parent
		return tx.Folders().Create(ctx, f)
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	s.log.Info(ctx, "folder created", "folder_id", f.ID, "owner_id", actor.ID)
	return f, nil
}

func (s *Folders) Get(ctx context.Context, actor models.Actor, id string) (*models.Folder, error) {
	const op = "folders.Get"

	f, err := loadFolder(ctx, s.repos.Folders(), op, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManageFolder(op, actor, f); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns the folders directly under parentID, or every folder of the
// actor when parentID is empty.
func (s *Folders) List(ctx context.Context, actor models.Actor, parentID string) ([]*models.Folder, error) {
	const op = "folders.List"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	ownerID := actor.ID
	if parentID != "" {
		parent, err := s.Get(ctx, actor, parentID)
		if err != nil {
			return nil, err
		}
		ownerID = parent.OwnerID
	}

	list, err := s.repos.Folders().List(ctx, ownerID, parentID)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(actor.ID)
	}
	return list, nil
}

// Update renames and re-parents a folder. A folder cannot move under
// itself or one of its descendants.
func (s *Folders) Update(ctx context.Context, actor models.Actor, id string, in FolderInput) (*models.Folder, error) {
	const op = "folders.Update"

	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	var updated *models.Folder
	err := s.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		f, err := loadFolder(ctx, tx.Folders(), op, id)
		if err != nil {
			return err
		}
		if err := policy.RequireManageFolder(op, actor, f); err != nil {
			return err
		}
		parent, err := folderFor(ctx, tx.Folders(), op, actor, f.OwnerID, in.ParentID)
		if err != nil {
			return err
		}
		if parent != nil {
			if err := requireNotBelow(ctx, tx.Folders(), op, f.ID, *parent); err != nil {
				return err
			}
		}

		f.Name = in.Name
		f.ParentID = parent
		f.UpdatedAt = s.now()
		updated, err = tx.Folders().Update(ctx, f)
		return err
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	s.log.Info(ctx, "folder updated", "folder_id", id, "actor_id", actor.ID)
	return updated, nil
}

// Delete removes an empty folder. Documents in any status and child folders
// count as content.
func (s *Folders) Delete(ctx context.Context, actor models.Actor, id string) error {
	const op = "folders.Delete"

	err := s.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		f, err := loadFolder(ctx, tx.Folders(), op, id)
		if err != nil {
			return err
		}
		if err := policy.RequireManageFolder(op, actor, f); err != nil {
			return err
		}
		children, docs, err := tx.Folders().CountContents(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 || docs > 0 {
			return common.NewError(common.ErrInvalidState, op,
				fmt.Errorf("folder %s is not empty: %d folders, %d documents", id, children, docs)).WithUser(actor.ID)
		}
		return tx.Folders().Delete(ctx, id)
	})
	if err != nil {
		return common.Classify(op, err)
	}

	s.log.Info(ctx, "folder deleted", "folder_id", id, "actor_id", actor.ID)
	return nil
}

func loadFolder(ctx context.Context, repo folders.Repository, op, id string) (*models.Folder, error) {
	f, err := repo.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, op, fmt.Errorf("folder %s", id))
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	return f, nil
}

// folderFor resolves the folder that content of ownerID is filed in. An
// empty folderID is the root and yields nil.
func folderFor(ctx context.Context, repo folders.Repository, op string, actor models.Actor, ownerID, folderID string) (*string, error) {
	if folderID == "" {
		return nil, nil
	}
	f, err := loadFolder(ctx, repo, op, folderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManageFolder(op, actor, f); err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, invalid(op, fmt.Errorf("folder %s belongs to another owner", folderID))
	}
	return &f.ID, nil
}

// requireNotBelow fails when parentID is id or one of its descendants.
func requireNotBelow(ctx context.Context, repo folders.Repository, op, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return invalid(op, fmt.Errorf("folder %s cannot move under itself", id))
		}
		if seen[cur] {
			break
		}
		seen[cur] = true

		f, err := loadFolder(ctx, repo, op, cur)
		if err != nil {
			return err
		}
		cur = ""
		if f.ParentID != nil {
			cur = *f.ParentID
		}
	}
	return nil
}
