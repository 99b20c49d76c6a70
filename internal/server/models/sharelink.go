package models

import "time"

// ShareLink is the public locator of a document. LinkID is derived from the
// document id and never rotates.
type ShareLink struct {
	DocumentID  string      `json:"documentId"`
	LinkID      string      `json:"linkId"`
	AccessLevel AccessLevel `json:"accessLevel"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// SharedDocument is what a link holder sees after resolving a link.
type SharedDocument struct {
	Link     *ShareLink `json:"link"`
	Document *Document  `json:"document"`
}
