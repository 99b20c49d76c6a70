// Package objectstore keeps document bytes outside the metadata store.
// S3Store talks to any S3-compatible service (AWS, MinIO); MemoryStore keeps
// bytes in process for local runs and tests.
package objectstore

import "time"

// Presigned is a time-limited request the client performs directly against
// the object store.
type Presigned struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}
