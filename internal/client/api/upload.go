package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/objectstore"
)

// NewDocument is the metadata sent when creating a document.
type NewDocument struct {
	Title     string `json:"title"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Upload creates the document record, asks for a presigned URL and puts the
// bytes there. If the byte upload fails the record stays; the upload can be
// repeated with UploadURL and PutObject.
func (c *Client) Upload(ctx context.Context, title, fileName, fileType string, data []byte) (*models.Document, error) {
	var doc models.Document
	in := NewDocument{Title: title, FileName: fileName, FileType: fileType, SizeBytes: int64(len(data))}
	if err := c.do(ctx, "api.CreateDocument", http.MethodPost, "/api/v1/documents", in, http.StatusCreated, &doc); err != nil {
		return nil, err
	}

	p, err := c.UploadURL(ctx, doc.ID)
	if err != nil {
		return &doc, err
	}
	if err := c.PutObject(ctx, p, fileType, data); err != nil {
		return &doc, err
	}
	return &doc, nil
}

func (c *Client) UploadURL(ctx context.Context, documentID string) (*objectstore.Presigned, error) {
	var p objectstore.Presigned
	path := "/api/v1/documents/" + url.PathEscape(documentID) + "/upload-url"
	if err := c.get(ctx, "api.UploadURL", path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutObject sends data to a presigned URL. The session token is not sent:
// the URL carries its own signature.
func (c *Client) PutObject(ctx context.Context, p *objectstore.Presigned, contentType string, data []byte) error {
	const op = "api.PutObject"

	req, err := http.NewRequestWithContext(ctx, p.Method, p.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return common.NewError(common.ErrTransientIO, op, fmt.Errorf("upload failed: %s", resp.Status))
	default:
		return fmt.Errorf("%s: upload failed: %s", op, resp.Status)
	}
}
