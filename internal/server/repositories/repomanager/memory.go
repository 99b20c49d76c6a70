package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/activities"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/documents"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/settings"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memory.NewStore()}
}

func (m *InMemoryRepositoryManager) Documents() documents.Repository { return m.store.Documents() }
func (m *InMemoryRepositoryManager) Folders() folders.Repository     { return m.store.Folders() }
func (m *InMemoryRepositoryManager) Permissions() permissions.Repository {
	return m.store.Permissions()
}
func (m *InMemoryRepositoryManager) ShareLinks() sharelinks.Repository { return m.store.ShareLinks() }
func (m *InMemoryRepositoryManager) Users() users.Repository           { return m.store.Users() }
func (m *InMemoryRepositoryManager) Settings() settings.Repository     { return m.store.Settings() }
func (m *InMemoryRepositoryManager) Activities() activities.Repository { return m.store.Activities() }

// InTx hands fn repositories bound to the store transaction. Writes through
// m itself inside fn would wait on that transaction forever.
func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error {
	return m.store.Atomically(ctx, func(ctx context.Context, tx *memory.Tx) error {
		return fn(ctx, memoryTx{tx: tx})
	})
}

// memoryTx adapts memory.Tx to Repos.
type memoryTx struct {
	tx *memory.Tx
}

func (t memoryTx) Documents() documents.Repository     { return t.tx.Documents() }
func (t memoryTx) Folders() folders.Repository         { return t.tx.Folders() }
func (t memoryTx) Permissions() permissions.Repository { return t.tx.Permissions() }
func (t memoryTx) ShareLinks() sharelinks.Repository   { return t.tx.ShareLinks() }
func (t memoryTx) Users() users.Repository             { return t.tx.Users() }
func (t memoryTx) Settings() settings.Repository       { return t.tx.Settings() }
func (t memoryTx) Activities() activities.Repository   { return t.tx.Activities() }

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Ping(context.Context) error { return nil }
