package store

import (
	"context"
	"fmt"

	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/internal/db"
)

// Open builds the Store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Store, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(backend, opts...), nil
}

func openBackend(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.Store.Driver {
	case "memory":
		return NewMemoryBackend(), nil
	case "", "file":
		backend, err := OpenFileBackend(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "postgres":
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(conn), nil
	case "mongo":
		backend, err := OpenMongoBackend(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
