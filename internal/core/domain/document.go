package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DocumentStatus is a step in the ingestion lifecycle of a document.
type DocumentStatus string

// Lifecycle statuses.
const (
	// StatusUploaded is set when the record is created, before ingestion starts.
	StatusUploaded DocumentStatus = "uploaded"

	// StatusProcessing is set before any extraction work begins.
	StatusProcessing DocumentStatus = "processing"

	// StatusEmbedded means every chunk of the document is persisted in the index.
	StatusEmbedded DocumentStatus = "embedded"

	// StatusError means the last ingestion attempt failed.
	StatusError DocumentStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusEmbedded, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no ingestion is in flight for this status.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusEmbedded || s == StatusError
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
//
// A run moves uploaded or terminal documents to processing, then to embedded or
// error. Processing may restart only when the run that set it never finished.
// Replacing the file resets any status except processing to uploaded.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusUploaded:
		return next == StatusProcessing || next == StatusUploaded
	case StatusProcessing:
		return next == StatusEmbedded || next == StatusError || next == StatusProcessing
	case StatusEmbedded, StatusError:
		return next == StatusProcessing || next == StatusUploaded
	default:
		return false
	}
}

// CheckTransition returns ErrInvalidTransition when the lifecycle forbids
// moving from s to next.
func (s DocumentStatus) CheckTransition(next DocumentStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document is an uploaded file tracked through ingestion.
type Document struct {
	// ID is the unique identifier assigned by the document store.
	ID int64

	// Filename is the original filename. It is what answers cite as a source.
	Filename string

	// Path is where the file is stored. Unique across documents.
	Path string

	// OwnerID is the user who uploaded the document.
	OwnerID int64

	// Status is the lifecycle status.
	Status DocumentStatus

	// Version starts at 1 and increments whenever the file is replaced.
	Version int

	// UploadedAt is when the record was created.
	UploadedAt time.Time

	// UpdatedAt is when the record was last modified.
	UpdatedAt time.Time
}

// Extension returns the lower-cased file extension of the stored path, including the dot.
func (d *Document) Extension() string {
	return strings.ToLower(filepath.Ext(d.Path))
}

// ChangeType names what happened to a document in its history.
type ChangeType string

// Document change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// DocumentChange is one entry in a document's history. Entries outlive the
// document record so a deletion stays traceable.
type DocumentChange struct {
	ID         int64      `json:"id"`
	DocumentID int64      `json:"document_id"`
	Version    int        `json:"version"`
	ChangeType ChangeType `json:"change_type"`
	ChangedBy  int64      `json:"changed_by"`
	Details    string     `json:"details,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
