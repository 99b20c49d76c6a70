// Package api is a small HTTP client for the GophDocs API: section reads
// and the create-then-upload flow.
// Server errors come back classified with the common error kinds, so
// callers can retry ErrTransientIO and give up on the rest.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/hashicorp/go-cleanhttp"
)

// Snapshot is the decoded body of GET /api/v1/sections/snapshot.
type Snapshot struct {
	Home   models.Page[*models.Document]          `json:"home"`
	Recent []*models.Document                     `json:"recent"`
	Shared []*models.Document                     `json:"shared"`
	Trash  []*models.Document                     `json:"trash"`
	ByType map[models.Category][]*models.Document `json:"byType"`
	Stats  *models.Stats                          `json:"stats"`
}

// ErrIncompleteSnapshot is returned for a snapshot body without stats.
var ErrIncompleteSnapshot = errors.New("snapshot has no stats")

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.get(ctx, "api.Snapshot", "/api/v1/sections/snapshot", &snap); err != nil {
		return nil, err
	}
	if snap.Stats == nil {
		return nil, fmt.Errorf("api.Snapshot: decode response: %w", ErrIncompleteSnapshot)
	}
	return &snap, nil
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	if err := c.get(ctx, "api.Stats", "/api/v1/stats", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) get(ctx context.Context, op, path string, dst any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, http.StatusOK, dst)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, want int, dst any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return common.NewError(common.ErrTransientIO, op, err)
}
