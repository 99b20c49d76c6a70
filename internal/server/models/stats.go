package models

// Stats is the per-user dashboard aggregate.
type Stats struct {
	TotalFiles        int64 `json:"totalFiles"`
	StorageUsedBytes  int64 `json:"storageUsedBytes"`
	QuotaBytes        int64 `json:"quotaBytes"`
	StoragePercentage int   `json:"storagePercentage"`
	SharedFiles       int64 `json:"sharedFiles"`
	RecentUploads     int64 `json:"recentUploads"`
}

// AdminStats is the cross-tenant aggregate.
type AdminStats struct {
	TotalUsers        int64 `json:"totalUsers"`
	ActiveUsers       int64 `json:"activeUsers"`
	TotalDocuments    int64 `json:"totalDocuments"`
	TotalStorageBytes int64 `json:"totalStorageBytes"`
}
