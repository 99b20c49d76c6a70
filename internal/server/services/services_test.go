package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/objectstore"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var (
	owner    = models.Actor{ID: "u1", Role: models.RoleUser}
	grantee  = models.Actor{ID: "u2", Role: models.RoleUser}
	stranger = models.Actor{ID: "u3", Role: models.RoleUser}
	admin    = models.Actor{ID: "root", Role: models.RoleAdmin}
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyObjects fails Get and Delete with err while err is set.
type flakyObjects struct {
	*objectstore.MemoryStore
	err error
}

func (f *flakyObjects) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyObjects) Delete(ctx context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	return f.MemoryStore.Delete(ctx, key)
}

type env struct {
	repos    *repomanager.InMemoryRepositoryManager
	objects  *flakyObjects
	clock    *fakeClock
	stats    *Stats
	docs     *Documents
	perms    *Permissions
	links    *ShareLinks
	sections *Sections
	admin    *Admin
	folders  *Folders
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := logging.Discard()
	e := &env{
		repos:   repomanager.NewInMemoryRepositoryManager(),
		objects: &flakyObjects{MemoryStore: objectstore.NewMemoryStore()},
		clock:   &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	e.stats = NewStats(e.repos, 16, time.Minute, 7*24*time.Hour, log)
	e.docs = NewDocuments(e.repos, e.objects, e.stats, log)
	e.perms = NewPermissions(e.repos, e.stats, log)
	e.links = NewShareLinks(e.repos, e.objects, []byte("link-secret"), log)
	e.sections = NewSections(e.repos, e.stats, 7*24*time.Hour, 50, 10)
	e.admin = NewAdmin(e.repos, e.docs, e.stats, 10, log)
	e.folders = NewFolders(e.repos, log)

	e.stats.now = e.clock.Now
	e.docs.now = e.clock.Now
	e.perms.now = e.clock.Now
	e.links.now = e.clock.Now
	e.sections.now = e.clock.Now
	e.admin.now = e.clock.Now
	e.folders.now = e.clock.Now

	for _, a := range []models.Actor{owner, grantee, stranger, admin} {
		_, err := e.repos.Users().Upsert(context.Background(), &models.User{
			ID: a.ID, Username: "user-" + a.ID, Email: a.ID + "@example.com",
			Role: a.Role, Status: models.UserActive, CreatedAt: e.clock.Now(),
		})
		require.NoError(t, err)
	}
	return e
}

// create makes an ACTIVE document for actor with bytes in the object store,
// then advances the clock so creation times are distinct.
func (e *env) create(t *testing.T, actor models.Actor, title, fileName string, size int64) *models.Document {
	t.Helper()
	doc, err := e.docs.Create(context.Background(), actor, CreateDocumentInput{
		Title: title, FileName: fileName, FileType: "application/octet-stream", SizeBytes: size,
	})
	require.NoError(t, err)
	e.objects.Put(doc.StorageKey(), []byte("bytes of "+fileName))
	e.clock.Advance(time.Minute)
	return doc
}

func (e *env) folder(t *testing.T, actor models.Actor, name, parentID string) *models.Folder {
	t.Helper()
	f, err := e.folders.Create(context.Background(), actor, FolderInput{Name: name, ParentID: parentID})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	return f
}

func (e *env) trash(t *testing.T, actor models.Actor, id string) {
	t.Helper()
	_, err := e.docs.MoveToTrash(context.Background(), actor, id)
	require.NoError(t, err)
}

func ids(docs []*models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func requireKind(t *testing.T, err error, kind error) *common.Error {
	t.Helper()
	require.ErrorIs(t, err, kind)
	var ce *common.Error
	require.True(t, errors.As(err, &ce), "expected *common.Error, got %T", err)
	return ce
}
