package models

import "time"

type ActivityAction string

const (
	ActionUploaded          ActivityAction = "UPLOADED"
	ActionRenamed           ActivityAction = "RENAMED"
	ActionTrashed           ActivityAction = "TRASHED"
	ActionRestored          ActivityAction = "RESTORED"
	ActionMoved             ActivityAction = "MOVED"
	ActionDeleted           ActivityAction = "DELETED"
	ActionAutoDeleted       ActivityAction = "AUTO_DELETED"
	ActionShared            ActivityAction = "SHARED"
	ActionPermissionGranted ActivityAction = "PERMISSION_GRANTED"
	ActionPermissionUpdated ActivityAction = "PERMISSION_UPDATED"
	ActionPermissionRevoked ActivityAction = "PERMISSION_REVOKED"
)

// Activity is an audit record. Rows outlive the documents they mention.
type Activity struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	UserID     string         `json:"userId"`
	Action     ActivityAction `json:"action"`
	Details    string         `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
