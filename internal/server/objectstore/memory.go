package objectstore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
)

// MemoryStore keeps objects in a map. Presigned URLs point nowhere.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	ttl     time.Duration
	now     timex.Clock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, ttl: 15 * time.Minute, now: timex.UTCNow}
}

func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = bytes.Clone(data)
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "objectstore.Get", nil)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) PresignPut(ctx context.Context, key, contentType string) (*Presigned, error) {
	u := url.URL{Scheme: "memory", Path: "/" + key}
	return &Presigned{URL: u.String(), Method: http.MethodPut, ExpiresAt: m.now().Add(m.ttl)}, nil
}
