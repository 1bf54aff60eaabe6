package types

import (
	"encoding/json"
	"time"
)

// ChangeType names the kind of mutation a Change describes.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change is emitted by the store for every document written or removed.
type Change struct {
	// Type is the kind of mutation.
	Type ChangeType `json:"type"`

	// Collection is the collection the document belongs to.
	Collection string `json:"collection"`

	// ID is the id of the changed document.
	ID string `json:"id"`

	// Document is the JSON document after the change. It is empty for
	// removals.
	Document json.RawMessage `json:"document,omitempty"`

	// At is the time the store applied the change.
	At time.Time `json:"at"`
}
