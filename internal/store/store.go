package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/socialmock/apiserver/types"
)

// ChangeSink receives a Change for every document the store writes or
// removes.
type ChangeSink interface {
	Publish(ctx context.Context, change types.Change) error
}

// Store wraps a Backend and reports changes to an optional sink.
type Store struct {
	backend Backend
	sink    ChangeSink
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithChangeSink routes change events to sink.
func WithChangeSink(sink ChangeSink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// New constructs a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemory returns a Store over an empty MemoryBackend.
func NewMemory(opts ...Option) *Store {
	return New(NewMemoryBackend(), opts...)
}

// Backend exposes the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	return s.backend.List(ctx, collection)
}

func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	return s.backend.Get(ctx, collection, id)
}

func (s *Store) Insert(ctx context.Context, collection string, doc Document) error {
	if err := s.backend.Insert(ctx, collection, doc); err != nil {
		return err
	}
	s.emit(ctx, types.ChangeAdded, collection, doc.ID, doc.Data)
	return nil
}

func (s *Store) Replace(ctx context.Context, collection string, doc Document) error {
	if err := s.backend.Replace(ctx, collection, doc); err != nil {
		return err
	}
	s.emit(ctx, types.ChangeModified, collection, doc.ID, doc.Data)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.backend.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.emit(ctx, types.ChangeRemoved, collection, id, nil)
	return nil
}

// Reset replaces the whole dataset. Documents that disappear are reported
// as removed and every document in data is reported as added.
func (s *Store) Reset(ctx context.Context, data types.Dataset) error {
	docs, err := datasetDocuments(data)
	if err != nil {
		return err
	}

	var previous map[string][]Document
	if s.sink != nil {
		previous = make(map[string][]Document, len(types.Collections))
		for _, name := range types.Collections {
			existing, err := s.backend.List(ctx, name)
			if err != nil {
				return err
			}
			previous[name] = existing
		}
	}

	if err := s.backend.Reset(ctx, docs); err != nil {
		return err
	}
	if s.sink == nil {
		return nil
	}

	for _, name := range types.Collections {
		kept := make(map[string]bool, len(docs[name]))
		for _, doc := range docs[name] {
			kept[doc.ID] = true
		}
		for _, doc := range previous[name] {
			if !kept[doc.ID] {
				s.emit(ctx, types.ChangeRemoved, name, doc.ID, nil)
			}
		}
		for _, doc := range docs[name] {
			s.emit(ctx, types.ChangeAdded, name, doc.ID, doc.Data)
		}
	}
	return nil
}

// Snapshot reads the whole dataset.
func (s *Store) Snapshot(ctx context.Context) (types.Dataset, error) {
	var data types.Dataset
	var err error
	if data.Users, err = decodeAll[types.User](ctx, s.backend, types.CollectionUsers); err != nil {
		return types.Dataset{}, err
	}
	if data.Posts, err = decodeAll[types.Post](ctx, s.backend, types.CollectionPosts); err != nil {
		return types.Dataset{}, err
	}
	if data.Comments, err = decodeAll[types.Comment](ctx, s.backend, types.CollectionComments); err != nil {
		return types.Dataset{}, err
	}
	return data, nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) emit(ctx context.Context, kind types.ChangeType, collection, id string, data json.RawMessage) {
	if s.sink == nil {
		return
	}
	change := types.Change{
		Type:       kind,
		Collection: collection,
		ID:         id,
		Document:   data,
		At:         s.now().UTC(),
	}
	if err := s.sink.Publish(ctx, change); err != nil {
		log.Printf("store: publish %s %s/%s: %v", kind, collection, id, err)
	}
}

func datasetDocuments(data types.Dataset) (map[string][]Document, error) {
	users, err := encodeAll(data.Users, func(u types.User) string { return u.ID })
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	posts, err := encodeAll(data.Posts, func(p types.Post) string { return p.ID })
	if err != nil {
		return nil, fmt.Errorf("encode posts: %w", err)
	}
	comments, err := encodeAll(data.Comments, func(c types.Comment) string { return c.ID })
	if err != nil {
		return nil, fmt.Errorf("encode comments: %w", err)
	}
	return map[string][]Document{
		types.CollectionUsers:    users,
		types.CollectionPosts:    posts,
		types.CollectionComments: comments,
	}, nil
}

func encodeAll[T any](items []T, id func(T) string) ([]Document, error) {
	docs := make([]Document, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id(item), Data: data})
	}
	return docs, nil
}

func decodeAll[T any](ctx context.Context, backend Backend, collection string) ([]T, error) {
	docs, err := backend.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc.Data, &item); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}
