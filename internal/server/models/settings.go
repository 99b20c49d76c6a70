package models

import "time"

const (
	DefaultQuotaBytes         int64 = 200 * 1024 * 1024
	DefaultTrashRetentionDays       = 7
)

// Settings is the singleton record of admin-managed runtime settings.
type Settings struct {
	QuotaBytes               int64     `json:"quotaBytes"`
	TrashRetentionDays       int       `json:"trashRetentionDays"`
	RequireEmailVerification bool      `json:"requireEmailVerification"`
	EnableTwoFactorAuth      bool      `json:"enableTwoFactorAuth"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

func DefaultSettings(now time.Time) *Settings {
	return &Settings{
		QuotaBytes:         DefaultQuotaBytes,
		TrashRetentionDays: DefaultTrashRetentionDays,
		UpdatedAt:          now,
	}
}
