package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/services"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON reads the request body into dst. A malformed body is a
// validation error.
func decodeJSON(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.NewError(common.ErrValidation, op, fmt.Errorf("malformed body: %w", err))
	}
	return nil
}

func queryInt(r *http.Request, op, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewError(common.ErrValidation, op, fmt.Errorf("%s: must be an integer", name))
	}
	return v, nil
}

// pageRequest reads the zero-based page and size query parameters.
func pageRequest(r *http.Request, op string) (models.PageRequest, error) {
	page, err := queryInt(r, op, "page")
	if err != nil {
		return models.PageRequest{}, err
	}
	size, err := queryInt(r, op, "size")
	if err != nil {
		return models.PageRequest{}, err
	}
	return models.PageRequest{Page: page, Size: size}, nil
}

// writeContent streams document bytes. disposition is "inline" or
// "attachment".
func writeContent(w http.ResponseWriter, c *services.Content, disposition string) error {
	defer c.Body.Close()

	contentType := c.Document.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": c.Document.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	_, err := io.Copy(w, c.Body)
	return err
}
