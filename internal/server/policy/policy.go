// Package policy holds the authorization rules applied by every service.
// Services call these instead of comparing ids inline.
package policy

import (
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

// CanMutateDocument allows the owner or an ADMIN.
func CanMutateDocument(actor models.Actor, doc *models.Document) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == doc.OwnerID)
}

// CanManagePermissions covers grants, revocations, permission listings and
// share links. Same rule as mutation.
func CanManagePermissions(actor models.Actor, doc *models.Document) bool {
	return CanMutateDocument(actor, doc)
}

// CanManageFolder allows the folder's owner or an ADMIN. Folders are never
// shared.
func CanManageFolder(actor models.Actor, f *models.Folder) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == f.OwnerID)
}

// CanView allows the owner, an ADMIN, or a holder of any permission level.
// Non-owners only see ACTIVE documents.
func CanView(actor models.Actor, doc *models.Document, perm *models.Permission) bool {
	if CanMutateDocument(actor, doc) {
		return true
	}
	return doc.Status == models.StatusActive && perm != nil && perm.UserID == actor.ID
}

// CanDownload is CanView restricted to levels that allow download.
func CanDownload(actor models.Actor, doc *models.Document, perm *models.Permission) bool {
	if CanMutateDocument(actor, doc) {
		return true
	}
	return CanView(actor, doc, perm) && perm.Level.AllowsDownload()
}

// RequireMutate returns a classified AuthorizationError when the actor may
// not mutate doc.
func RequireMutate(op string, actor models.Actor, doc *models.Document) error {
	if CanMutateDocument(actor, doc) {
		return nil
	}
	return common.NewError(common.ErrUnauthorized, op, nil).WithDocument(doc.ID).WithUser(actor.ID)
}

// RequireManagePermissions is RequireMutate for permission and link operations.
func RequireManagePermissions(op string, actor models.Actor, doc *models.Document) error {
	if CanManagePermissions(actor, doc) {
		return nil
	}
	return common.NewError(common.ErrUnauthorized, op, nil).WithDocument(doc.ID).WithUser(actor.ID)
}

func RequireManageFolder(op string, actor models.Actor, f *models.Folder) error {
	if CanManageFolder(actor, f) {
		return nil
	}
	return common.NewError(common.ErrUnauthorized, op, fmt.Errorf("folder %s", f.ID)).WithUser(actor.ID)
}

// RequireAdmin guards every admin operation.
func RequireAdmin(op string, actor models.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return common.NewError(common.ErrUnauthorized, op, nil).WithUser(actor.ID)
}
