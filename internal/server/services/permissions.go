package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/policy"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/documents"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Permissions is the ledger of per-(document, user) grants.
type Permissions struct {
	repos repomanager.RepositoryManager
	stats StatsInvalidator
	log   logging.Logger
	now   timex.Clock
}

func NewPermissions(repos repomanager.RepositoryManager, stats StatsInvalidator, log logging.Logger) *Permissions {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &Permissions{
		repos: repos,
		stats: stats,
		log:   log.With("component", "permissions"),
		now:   timex.UTCNow,
	}
}

func validateGrant(targetUserID string, level models.AccessLevel) error {
	return validation.Errors{
		"userId": validation.Validate(targetUserID, validation.Required),
		"level":  validation.Validate(level, validation.Required, validation.In(models.PermissionLevels...)),
	}.Filter()
}

// Grant gives targetUserID the level on an ACTIVE document. Granting again
// changes the level of the existing row.
func (p *Permissions) Grant(ctx context.Context, actor models.Actor, documentID, targetUserID string, level models.AccessLevel) (*models.Permission, error) {
	const op = "permissions.Grant"

	if err := validateGrant(targetUserID, level); err != nil {
		return nil, invalid(op, err).WithDocument(documentID)
	}

	var granted *models.Permission
	err := p.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		doc, err := p.manageable(ctx, tx, op, actor, documentID)
		if err != nil {
			return err
		}
		if targetUserID == doc.OwnerID {
			return invalid(op, errors.New("owner already has full access")).WithDocument(documentID).WithUser(targetUserID)
		}
		if _, err := tx.Users().Get(ctx, targetUserID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewError(common.ErrNotFound, op, errors.New("unknown user")).WithUser(targetUserID)
			}
			return err
		}

		now := p.now()
		granted, err = tx.Permissions().Upsert(ctx, &models.Permission{
			DocumentID: documentID,
			UserID:     targetUserID,
			Level:      level,
			GrantedAt:  now,
		})
		if err != nil {
			return err
		}
		return recordActivity(ctx, tx, now, documentID, actor.ID, models.ActionPermissionGranted, grantDetails(targetUserID, level))
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	p.invalidateOwner(ctx, documentID)
	p.log.Info(ctx, "permission granted", "document_id", documentID, "user_id", targetUserID, "level", level, "actor_id", actor.ID)
	return granted, nil
}

// Update changes the level of an existing grant.
func (p *Permissions) Update(ctx context.Context, actor models.Actor, documentID, targetUserID string, level models.AccessLevel) (*models.Permission, error) {
	const op = "permissions.Update"

	if err := validateGrant(targetUserID, level); err != nil {
		return nil, invalid(op, err).WithDocument(documentID)
	}

	var updated *models.Permission
	err := p.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		if _, err := p.manageable(ctx, tx, op, actor, documentID); err != nil {
			return err
		}

		var err error
		updated, err = tx.Permissions().UpdateLevel(ctx, documentID, targetUserID, level)
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, op, errors.New("no permission to update")).WithDocument(documentID).WithUser(targetUserID)
		}
		if err != nil {
			return err
		}
		return recordActivity(ctx, tx, p.now(), documentID, actor.ID, models.ActionPermissionUpdated, grantDetails(targetUserID, level))
	})
	if err != nil {
		return nil, common.Classify(op, err)
	}

	p.log.Info(ctx, "permission updated", "document_id", documentID, "user_id", targetUserID, "level", level, "actor_id", actor.ID)
	return updated, nil
}

// Revoke removes the grant if there is one. Revoking a missing grant is not
// an error, and works whatever the document status.
func (p *Permissions) Revoke(ctx context.Context, actor models.Actor, documentID, targetUserID string) error {
	const op = "permissions.Revoke"

	removed := false
	err := p.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		doc, err := loadDocument(ctx, tx.Documents(), op, documentID)
		if err != nil {
			return err
		}
		if err := policy.RequireManagePermissions(op, actor, doc); err != nil {
			return err
		}

		removed, err = tx.Permissions().Delete(ctx, documentID, targetUserID)
		if err != nil || !removed {
			return err
		}
		return recordActivity(ctx, tx, p.now(), documentID, actor.ID, models.ActionPermissionRevoked, "user="+targetUserID)
	})
	if err != nil {
		return common.Classify(op, err)
	}

	if removed {
		p.invalidateOwner(ctx, documentID)
		p.log.Info(ctx, "permission revoked", "document_id", documentID, "user_id", targetUserID, "actor_id", actor.ID)
	}
	return nil
}

// List returns the grants on a document, oldest first.
func (p *Permissions) List(ctx context.Context, actor models.Actor, documentID string) ([]*models.Permission, error) {
	const op = "permissions.List"

	doc, err := loadDocument(ctx, p.repos.Documents(), op, documentID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManagePermissions(op, actor, doc); err != nil {
		return nil, err
	}

	perms, err := p.repos.Permissions().ListByDocument(ctx, documentID)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithDocument(documentID)
	}
	return perms, nil
}

// ListSharedWith returns the ACTIVE documents other users granted to actor,
// newest first.
func (p *Permissions) ListSharedWith(ctx context.Context, actor models.Actor) ([]*models.Document, error) {
	const op = "permissions.ListSharedWith"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	docs, err := sharedWith(ctx, p.repos.Documents(), actor.ID)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(actor.ID)
	}
	return docs, nil
}

func sharedWith(ctx context.Context, repo documents.Repository, userID string) ([]*models.Document, error) {
	return repo.Find(ctx, models.DocumentQuery{
		Status:     models.StatusActive,
		SharedWith: userID,
		SortBy:     models.DocumentSortCreatedAt,
		SortDir:    models.SortDesc,
	})
}

// manageable loads an ACTIVE document the actor may manage grants on.
func (p *Permissions) manageable(ctx context.Context, tx repomanager.Repos, op string, actor models.Actor, documentID string) (*models.Document, error) {
	doc, err := loadDocument(ctx, tx.Documents(), op, documentID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManagePermissions(op, actor, doc); err != nil {
		return nil, err
	}
	if err := requireStatus(op, doc, models.StatusActive); err != nil {
		return nil, err
	}
	return doc, nil
}

// invalidateOwner drops the owner's cached stats, since sharedFiles depends
// on grants.
func (p *Permissions) invalidateOwner(ctx context.Context, documentID string) {
	doc, err := p.repos.Documents().Get(ctx, documentID)
	if err != nil {
		p.stats.InvalidateAll()
		return
	}
	p.stats.Invalidate(doc.OwnerID)
}

func grantDetails(userID string, level models.AccessLevel) string {
	return fmt.Sprintf("user=%s level=%s", userID, level)
}
