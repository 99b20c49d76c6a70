package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_SendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sections/snapshot", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recent": []map[string]any{{"id": "d1", "title": "Report"}},
			"stats":  map[string]any{"totalFiles": 1, "storagePercentage": 12},
		})
	}))
	defer srv.Close()

	snap, err := New(srv.URL+"/", "tok", time.Second).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Recent, 1)
	assert.Equal(t, "d1", snap.Recent[0].ID)
	assert.Equal(t, &models.Stats{TotalFiles: 1, StoragePercentage: 12}, snap.Stats)
}

func TestSnapshot_RejectsBodyWithoutStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recent":[]}`))
	}))
	defer srv.Close()

	snap, err := New(srv.URL, "tok", time.Second).Snapshot(context.Background())
	require.ErrorIs(t, err, ErrIncompleteSnapshot)
	assert.Nil(t, snap)
}

func TestGet_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"server body transient", http.StatusServiceUnavailable, `{"error":{"code":"TRANSIENT_IO","message":"db down"}}`, common.ErrTransientIO},
		{"server body forbidden", http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"no"}}`, common.ErrUnauthorized},
		{"expired session", http.StatusUnauthorized, `{"error":{"code":"UNAUTHORIZED","message":"token expired"}}`, common.ErrInvalidToken},
		{"proxy 502", http.StatusBadGateway, `<html>bad gateway</html>`, common.ErrTransientIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "tok", time.Second).Stats(context.Background())
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestGet_UnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "", time.Second).Stats(context.Background())
	require.ErrorIs(t, err, common.ErrTransientIO)
}

func TestGet_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, "", time.Second).Stats(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
