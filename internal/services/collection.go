package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/socialmock/apiserver/internal/apierror"
	"github.com/socialmock/apiserver/internal/query"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
)

const (
	fieldID        = "id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// CollectionHooks customise generic CRUD for one record type.
type CollectionHooks[T any] struct {
	// Prepare runs before every write. previous is nil on create.
	Prepare func(ctx context.Context, item T, previous *T) (T, error)
	// Cascade removes the records that depend on a deleted one.
	Cascade func(ctx context.Context, id string) error
	// Present turns a stored record into its response form.
	Present func(T) T
}

// CollectionService implements json-server style CRUD over one collection.
type CollectionService[T any] struct {
	name   string
	repo   Repository[T]
	fields query.Fields[T]
	hooks  CollectionHooks[T]
	now    func() time.Time
}

func NewCollectionService[T any](name string, repo Repository[T], fields query.Fields[T], hooks CollectionHooks[T]) *CollectionService[T] {
	return &CollectionService[T]{
		name:   name,
		repo:   repo,
		fields: fields,
		hooks:  hooks,
		now:    time.Now,
	}
}

// List filters, sorts and pages the collection according to values.
func (s *CollectionService[T]) List(ctx context.Context, values url.Values) ([]T, int, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	items = query.Filter(items, values, s.fields)
	page, total := query.Apply(items, query.Parse(values, query.Defaults{}), s.fields)
	return s.presentAll(page), total, nil
}

func (s *CollectionService[T]) Get(ctx context.Context, id string) (T, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return item, s.notFound(err)
	}
	return s.present(item), nil
}

// Create stores body as a new record. A missing id is generated and the
// timestamps default to now.
func (s *CollectionService[T]) Create(ctx context.Context, body json.RawMessage) (T, error) {
	var zero T
	fields, err := decodeObject(body)
	if err != nil {
		return zero, err
	}

	now := s.timestamp()
	if id, _ := fields[fieldID].(string); id == "" {
		fields[fieldID] = types.NewID()
	}
	setDefault(fields, fieldCreatedAt, now)
	setDefault(fields, fieldUpdatedAt, now)

	item, err := decodeRecord[T](fields)
	if err != nil {
		return zero, err
	}
	if item, err = s.prepare(ctx, item, nil); err != nil {
		return zero, err
	}

	created, err := s.repo.Insert(ctx, item)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return zero, apierror.NewConflict("id already exists")
		}
		return zero, err
	}
	return s.present(created), nil
}

// Replace overwrites a record. The id comes from the path and createdAt is
// kept when body omits it.
func (s *CollectionService[T]) Replace(ctx context.Context, id string, body json.RawMessage) (T, error) {
	var zero T
	fields, err := decodeObject(body)
	if err != nil {
		return zero, err
	}
	previous, current, err := s.current(ctx, id)
	if err != nil {
		return zero, err
	}

	fields[fieldID] = id
	if _, ok := fields[fieldCreatedAt]; !ok {
		if createdAt, ok := current[fieldCreatedAt]; ok {
			fields[fieldCreatedAt] = createdAt
		}
	}
	fields[fieldUpdatedAt] = s.timestamp()
	return s.write(ctx, fields, &previous)
}

// Patch shallow-merges body into a record.
func (s *CollectionService[T]) Patch(ctx context.Context, id string, body json.RawMessage) (T, error) {
	var zero T
	patch, err := decodeObject(body)
	if err != nil {
		return zero, err
	}
	previous, fields, err := s.current(ctx, id)
	if err != nil {
		return zero, err
	}

	for key, value := range patch {
		fields[key] = value
	}
	fields[fieldID] = id
	fields[fieldUpdatedAt] = s.timestamp()
	return s.write(ctx, fields, &previous)
}

// Delete removes a record and then its dependents.
func (s *CollectionService[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.notFound(err)
	}
	if s.hooks.Cascade != nil {
		return s.hooks.Cascade(ctx, id)
	}
	return nil
}

func (s *CollectionService[T]) current(ctx context.Context, id string) (T, map[string]any, error) {
	previous, err := s.repo.Get(ctx, id)
	if err != nil {
		return previous, nil, s.notFound(err)
	}
	encoded, err := json.Marshal(previous)
	if err != nil {
		return previous, nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return previous, nil, err
	}
	return previous, fields, nil
}

func (s *CollectionService[T]) write(ctx context.Context, fields map[string]any, previous *T) (T, error) {
	var zero T
	item, err := decodeRecord[T](fields)
	if err != nil {
		return zero, err
	}
	if item, err = s.prepare(ctx, item, previous); err != nil {
		return zero, err
	}
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return zero, s.notFound(err)
	}
	return s.present(updated), nil
}

func (s *CollectionService[T]) prepare(ctx context.Context, item T, previous *T) (T, error) {
	if s.hooks.Prepare == nil {
		return item, nil
	}
	return s.hooks.Prepare(ctx, item, previous)
}

func (s *CollectionService[T]) present(item T) T {
	if s.hooks.Present == nil {
		return item
	}
	return s.hooks.Present(item)
}

func (s *CollectionService[T]) presentAll(items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, s.present(item))
	}
	return out
}

func (s *CollectionService[T]) notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apierror.NewNotFound(s.name + " not found")
	}
	return err
}

func (s *CollectionService[T]) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func decodeObject(body json.RawMessage) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, apierror.NewValidation("request body must be a JSON object")
	}
	return fields, nil
}

func decodeRecord[T any](fields map[string]any) (T, error) {
	var item T
	encoded, err := json.Marshal(fields)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(encoded, &item); err != nil {
		return item, apierror.Wrap(err, apierror.Validation, "invalid field value")
	}
	return item, nil
}

func setDefault(fields map[string]any, key string, value any) {
	if _, ok := fields[key]; !ok {
		fields[key] = value
	}
}
