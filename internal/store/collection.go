package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection gives typed access to one named collection of a Store.
type Collection[T any] struct {
	store *Store
	name  string
	id    func(T) string
}

// NewCollection binds name to the record type T. id extracts the record key.
func NewCollection[T any](s *Store, name string, id func(T) string) *Collection[T] {
	return &Collection[T]{store: s, name: name, id: id}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// List returns every record in insertion order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return decodeAll[T](ctx, c.store.backend, c.name)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	data, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return item, nil
}

// Find returns the first record matching match, or ErrNotFound.
func (c *Collection[T]) Find(ctx context.Context, match func(T) bool) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if match(item) {
			return item, nil
		}
	}
	return zero, ErrNotFound
}

// Filter returns every record matching match.
func (c *Collection[T]) Filter(ctx context.Context, match func(T) bool) ([]T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, match func(T) bool) (int, error) {
	items, err := c.Filter(ctx, match)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (c *Collection[T]) Insert(ctx context.Context, item T) (T, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return item, err
	}
	if err := c.store.Insert(ctx, c.name, Document{ID: c.id(item), Data: data}); err != nil {
		return item, err
	}
	return item, nil
}

// Update replaces the stored record with the same id.
func (c *Collection[T]) Update(ctx context.Context, item T) (T, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return item, err
	}
	if err := c.store.Replace(ctx, c.name, Document{ID: c.id(item), Data: data}); err != nil {
		return item, err
	}
	return item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}
