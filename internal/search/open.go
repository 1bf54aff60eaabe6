package search

import (
	"context"
	"fmt"
	"log"

	"github.com/socialmock/apiserver/config"
)

// LogIndex only logs what it would index.
type LogIndex struct{}

func (LogIndex) Save(ctx context.Context, record PostRecord) error {
	log.Printf("search: index post %s", record.ObjectID)
	return nil
}

func (LogIndex) Delete(ctx context.Context, objectID string) error {
	log.Printf("search: delete post %s", objectID)
	return nil
}

func (LogIndex) Close() error {
	return nil
}

// Open builds the index selected by cfg.Search.Driver.
func Open(ctx context.Context, cfg config.Config) (Index, error) {
	switch cfg.Search.Driver {
	case "", "none":
		return LogIndex{}, nil
	case "memory":
		return NewMemoryIndex(), nil
	case "redis":
		index, err := NewRedisIndex(ctx, cfg.Redis, cfg.Search.IndexName)
		if err != nil {
			return nil, err
		}
		return index, nil
	case "algolia":
		index, err := NewAlgoliaIndex(cfg.Algolia, cfg.Search.IndexName)
		if err != nil {
			return nil, err
		}
		return index, nil
	default:
		return nil, fmt.Errorf("unknown search driver %q", cfg.Search.Driver)
	}
}
