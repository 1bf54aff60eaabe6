package store

import (
	"context"
	"encoding/json"
)

// Document is a raw JSON record keyed by its id.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Backend persists raw JSON documents grouped into named collections.
// List returns documents in insertion order.
type Backend interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Insert(ctx context.Context, collection string, doc Document) error
	Replace(ctx context.Context, collection string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	// Reset replaces the content of every collection with data.
	Reset(ctx context.Context, data map[string][]Document) error
	Close() error
}
