package models

import "time"

type AccessLevel string

const (
	AccessView     AccessLevel = "VIEW"
	AccessDownload AccessLevel = "DOWNLOAD"
	AccessEdit     AccessLevel = "EDIT"
)

// PermissionLevels are the levels a per-user grant may carry.
var PermissionLevels = []any{AccessView, AccessDownload, AccessEdit}

// LinkLevels are the levels a share link may carry.
var LinkLevels = []any{AccessView, AccessDownload}

// AllowsDownload reports whether the level includes fetching the bytes as an
// attachment.
func (l AccessLevel) AllowsDownload() bool {
	return l == AccessDownload || l == AccessEdit
}

// Permission is a per-(document, user) grant. At most one exists per pair.
type Permission struct {
	DocumentID string      `json:"documentId"`
	UserID     string      `json:"userId"`
	Level      AccessLevel `json:"level"`
	GrantedAt  time.Time   `json:"grantedAt"`
}
