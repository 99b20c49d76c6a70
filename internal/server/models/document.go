// Package models defines the server-side data models shared by repositories,
// services and the HTTP layer.
package models

import (
	"fmt"
	"path"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusActive  DocumentStatus = "ACTIVE"
	StatusTrashed DocumentStatus = "TRASHED"
	// StatusDeleted is terminal. No stored row carries it: the row is removed.
	StatusDeleted DocumentStatus = "PERMANENTLY_DELETED"
)

// Document is the metadata record of a stored file. Bytes live in the object
// store under StorageKey().
type Document struct {
	ID                   string         `json:"id"`
	OwnerID              string         `json:"ownerId"`
	Title                string         `json:"title"`
	FileName             string         `json:"fileName"`
	FileType             string         `json:"fileType"`
	SizeBytes            int64          `json:"sizeBytes"`
	FolderID             *string        `json:"folderId,omitempty"`
	Status               DocumentStatus `json:"status"`
	CreatedAt            time.Time      `json:"createdAt"`
	TrashedAt            *time.Time     `json:"trashedAt,omitempty"`
	PermanentlyDeletedAt *time.Time     `json:"permanentlyDeletedAt,omitempty"`
}

// StorageKey is the object-store key holding the document bytes.
func (d *Document) StorageKey() string {
	return fmt.Sprintf("documents/%s/%s", d.OwnerID, d.ID)
}

// Extension returns the lower-cased file name extension without the dot.
func (d *Document) Extension() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(d.FileName)), ".")
}

// Category groups file name extensions for the by-type sections.
type Category string

const (
	CategoryDocuments Category = "documents"
	CategoryImages    Category = "images"
	CategoryVideos    Category = "videos"
	CategoryAudio     Category = "audio"
)

// CategoryExtensions lists the extensions that make up each category.
var CategoryExtensions = map[Category][]string{
	CategoryDocuments: {"pdf", "doc", "docx", "txt", "rtf", "odt", "xls", "xlsx", "ppt", "pptx", "csv", "md"},
	CategoryImages:    {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"},
	CategoryVideos:    {"mp4", "avi", "mov", "mkv", "webm", "wmv"},
	CategoryAudio:     {"mp3", "wav", "ogg", "flac", "aac", "m4a"},
}
