// Package repomanager vends the repositories of one storage backend and
// runs units of work against them.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/activities"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/documents"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/settings"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/users"
)

// Repos is the set of repositories bound to one connection or transaction.
type Repos interface {
	Documents() documents.Repository
	Folders() folders.Repository
	Permissions() permissions.Repository
	ShareLinks() sharelinks.Repository
	Users() users.Repository
	Settings() settings.Repository
	Activities() activities.Repository
}

// RepositoryManager hands out repositories bound to the shared connection
// and runs multi-step writes in one transaction.
type RepositoryManager interface {
	Repos
	// InTx runs fn with repositories bound to a single transaction. An error
	// from fn rolls the transaction back.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
}
