package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// MemoryBackend keeps every collection in process memory.
// Each operation is serialised; sequences of operations are not.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	// afterWrite runs with the write lock held once a mutation is applied.
	afterWrite func(data map[string][]Document) error
}

type memoryCollection struct {
	order []string
	docs  map[string]json.RawMessage
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string]*memoryCollection)}
}

func (m *MemoryBackend) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.collections[collection]
	if c == nil {
		return []Document{}, nil
	}
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Document{ID: id, Data: cloneRaw(c.docs[id])})
	}
	return docs, nil
}

func (m *MemoryBackend) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.collections[collection]
	if c == nil {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRaw(data), nil
}

func (m *MemoryBackend) Insert(ctx context.Context, collection string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, exists := c.docs[doc.ID]; exists {
		return ErrConflict
	}
	c.order = append(c.order, doc.ID)
	c.docs[doc.ID] = cloneRaw(doc.Data)
	if err := m.written(); err != nil {
		c.order = c.order[:len(c.order)-1]
		delete(c.docs, doc.ID)
		return err
	}
	return nil
}

func (m *MemoryBackend) Replace(ctx context.Context, collection string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collections[collection]
	if c == nil {
		return ErrNotFound
	}
	previous, exists := c.docs[doc.ID]
	if !exists {
		return ErrNotFound
	}
	c.docs[doc.ID] = cloneRaw(doc.Data)
	if err := m.written(); err != nil {
		c.docs[doc.ID] = previous
		return err
	}
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collections[collection]
	if c == nil {
		return ErrNotFound
	}
	previous, exists := c.docs[id]
	if !exists {
		return ErrNotFound
	}
	i := slices.Index(c.order, id)
	delete(c.docs, id)
	c.order = slices.Delete(c.order, i, i+1)
	if err := m.written(); err != nil {
		c.order = slices.Insert(c.order, i, id)
		c.docs[id] = previous
		return err
	}
	return nil
}

// Reset swaps in data only once every collection is free of duplicate ids
// and, with persistence, once the write succeeded.
func (m *MemoryBackend) Reset(ctx context.Context, data map[string][]Document) error {
	next, err := buildCollections(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.collections
	m.collections = next
	if err := m.written(); err != nil {
		m.collections = previous
		return err
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

func buildCollections(data map[string][]Document) (map[string]*memoryCollection, error) {
	collections := make(map[string]*memoryCollection, len(data))
	for name, docs := range data {
		c := &memoryCollection{
			order: make([]string, 0, len(docs)),
			docs:  make(map[string]json.RawMessage, len(docs)),
		}
		for _, doc := range docs {
			if _, exists := c.docs[doc.ID]; exists {
				return nil, fmt.Errorf("%w: duplicate id %q in %s", ErrConflict, doc.ID, name)
			}
			c.order = append(c.order, doc.ID)
			c.docs[doc.ID] = cloneRaw(doc.Data)
		}
		collections[name] = c
	}
	return collections, nil
}

func (m *MemoryBackend) collection(name string) *memoryCollection {
	c := m.collections[name]
	if c == nil {
		c = &memoryCollection{docs: make(map[string]json.RawMessage)}
		m.collections[name] = c
	}
	return c
}

func (m *MemoryBackend) written() error {
	if m.afterWrite == nil {
		return nil
	}
	return m.afterWrite(m.snapshotLocked())
}

func (m *MemoryBackend) snapshotLocked() map[string][]Document {
	data := make(map[string][]Document, len(m.collections))
	for name, c := range m.collections {
		docs := make([]Document, 0, len(c.order))
		for _, id := range c.order {
			docs = append(docs, Document{ID: id, Data: c.docs[id]})
		}
		data[name] = docs
	}
	return data
}

func cloneRaw(data json.RawMessage) json.RawMessage {
	return bytes.Clone(data)
}
