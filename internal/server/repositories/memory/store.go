// Package memory is an in-process implementation of every repository. It
// backs tests and the "memory://" DSN used for local runs.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type permKey struct {
	documentID string
	userID     string
}

type state struct {
	docs       map[string]models.Document
	folders    map[string]models.Folder
	perms      map[permKey]models.Permission
	links      map[string]models.ShareLink
	users      map[string]models.User
	settings   *models.Settings
	activities []models.Activity
}

func (s *state) clone() *state {
	c := &state{
		docs:       maps.Clone(s.docs),
		folders:    maps.Clone(s.folders),
		perms:      maps.Clone(s.perms),
		links:      maps.Clone(s.links),
		users:      maps.Clone(s.users),
		activities: slices.Clone(s.activities),
	}
	if s.settings != nil {
		v := *s.settings
		c.settings = &v
	}
	return c
}

// Store holds all data behind one mutex. Transactions are serialized and
// restored from a snapshot when they fail. Writes made outside a
// transaction wait for the running one, so a rollback never drops them.
type Store struct {
	// mu guards data.
	mu sync.Mutex
	// txMu is held by a running transaction and by each write outside one.
	txMu sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: &state{
		docs:    map[string]models.Document{},
		folders: map[string]models.Folder{},
		perms:   map[permKey]models.Permission{},
		links:   map[string]models.ShareLink{},
		users:   map[string]models.User{},
	}}
}

// lockWrite takes the locks a write needs and returns their release.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// Tx vends repositories bound to the transaction run by Atomically. Writes
// through the Store's own repositories inside fn would deadlock.
type Tx struct {
	s *Store
}

// Atomically runs fn and rolls the data back if fn fails.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, &Tx{s: s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Documents() *DocumentRepository     { return &DocumentRepository{s: s} }
func (s *Store) Folders() *FolderRepository         { return &FolderRepository{s: s} }
func (s *Store) Permissions() *PermissionRepository { return &PermissionRepository{s: s} }
func (s *Store) ShareLinks() *ShareLinkRepository   { return &ShareLinkRepository{s: s} }
func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }
func (s *Store) Settings() *SettingsRepository      { return &SettingsRepository{s: s} }
func (s *Store) Activities() *ActivityRepository    { return &ActivityRepository{s: s} }

func (t *Tx) Documents() *DocumentRepository     { return &DocumentRepository{s: t.s, tx: true} }
func (t *Tx) Folders() *FolderRepository         { return &FolderRepository{s: t.s, tx: true} }
func (t *Tx) Permissions() *PermissionRepository { return &PermissionRepository{s: t.s, tx: true} }
func (t *Tx) ShareLinks() *ShareLinkRepository   { return &ShareLinkRepository{s: t.s, tx: true} }
func (t *Tx) Users() *UserRepository             { return &UserRepository{s: t.s, tx: true} }
func (t *Tx) Settings() *SettingsRepository      { return &SettingsRepository{s: t.s, tx: true} }
func (t *Tx) Activities() *ActivityRepository    { return &ActivityRepository{s: t.s, tx: true} }
