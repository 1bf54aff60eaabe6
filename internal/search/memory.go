package search

import (
	"context"
	"sync"
)

// MemoryIndex keeps records in a map.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]PostRecord
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]PostRecord)}
}

func (m *MemoryIndex) Save(ctx context.Context, record PostRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ObjectID] = record
	return nil
}

func (m *MemoryIndex) Delete(ctx context.Context, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, objectID)
	return nil
}

// Get returns the record stored under objectID.
func (m *MemoryIndex) Get(objectID string) (PostRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[objectID]
	return record, ok
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryIndex) Close() error {
	return nil
}
