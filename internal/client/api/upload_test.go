package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_CreatesThenPuts(t *testing.T) {
	var stored []byte
	var storedType string

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /api/v1/documents", func(w http.ResponseWriter, r *http.Request) {
		var in NewDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, NewDocument{Title: "Notes", FileName: "notes.txt", FileType: "text/plain", SizeBytes: 5}, in)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "d1", "title": in.Title})
	})
	mux.HandleFunc("GET /api/v1/documents/d1/upload-url", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(objectstore.Presigned{URL: srv.URL + "/bucket/documents/u1/d1", Method: http.MethodPut})
	})
	mux.HandleFunc("PUT /bucket/documents/u1/d1", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		storedType = r.Header.Get("Content-Type")
		stored, _ = io.ReadAll(r.Body)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	doc, err := New(srv.URL, "tok", time.Second).Upload(context.Background(), "Notes", "notes.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "hello", string(stored))
	assert.Equal(t, "text/plain", storedType)
}

func TestPutObject_Failures(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusServiceUnavailable)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	p := &objectstore.Presigned{URL: srv.URL + "/obj", Method: http.MethodPut}

	err := c.PutObject(context.Background(), p, "", []byte("x"))
	require.ErrorIs(t, err, common.ErrTransientIO)

	status.Store(http.StatusForbidden)
	err = c.PutObject(context.Background(), p, "", []byte("x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrTransientIO)
}
