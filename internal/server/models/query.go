package models

import (
	"math"
	"time"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ParseSortDir falls back to def for anything but "asc" or "desc".
func ParseSortDir(s string, def SortDir) SortDir {
	switch SortDir(s) {
	case SortAsc, SortDesc:
		return SortDir(s)
	}
	return def
}

type DocumentSort string

const (
	DocumentSortTitle     DocumentSort = "title"
	DocumentSortSize      DocumentSort = "size"
	DocumentSortCreatedAt DocumentSort = "createdAt"
	DocumentSortTrashedAt DocumentSort = "trashedAt"
)

// DocumentQuery selects documents. Zero-valued fields do not filter. Results
// are ordered by SortBy/SortDir and then by id ascending.
type DocumentQuery struct {
	OwnerID string
	Status  DocumentStatus
	// Search is a case-insensitive substring over title and file name.
	Search        string
	CreatedAfter  *time.Time
	TrashedBefore *time.Time
	// Extensions matches the lower-cased file name extension.
	Extensions []string
	// SharedWith keeps documents with a permission row for this user that
	// the user does not own.
	SharedWith string
	// FolderID keeps documents filed directly in this folder.
	FolderID string

	SortBy  DocumentSort
	SortDir SortDir
	// Limit of 0 means no limit.
	Limit  int
	Offset int
}

type UserSort string

const (
	UserSortUsername  UserSort = "username"
	UserSortEmail     UserSort = "email"
	UserSortRole      UserSort = "role"
	UserSortStatus    UserSort = "status"
	UserSortCreatedAt UserSort = "createdAt"
)

// UserQuery selects users for the admin listing.
type UserQuery struct {
	Role   Role
	Status UserStatus
	// Search is a case-insensitive substring over username and email.
	Search string

	SortBy  UserSort
	SortDir SortDir
	Limit   int
	Offset  int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a zero-based page number and a page size.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the page to >= 0 and replaces a size outside
// [1, MaxPageSize] with def. The page is also capped so that Offset never
// overflows.
func (p PageRequest) Normalize(def int) PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		p.Size = def
	}
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		p.Page = math.MaxInt / p.Size
	}
	return p
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items         []T   `json:"items"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Items:         items,
		TotalElements: total,
		TotalPages:    pages,
		Page:          req.Page,
		Size:          req.Size,
		HasNext:       req.Page < pages-1,
		HasPrevious:   req.Page > 0,
	}
}
