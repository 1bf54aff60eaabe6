package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when inserting a record whose id is already taken.
var ErrConflict = errors.New("already exists")
