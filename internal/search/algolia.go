package search

import (
	"context"
	"errors"
	"strings"

	algolia "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/socialmock/apiserver/config"
)

// AlgoliaIndex writes records to a hosted Algolia index.
type AlgoliaIndex struct {
	index *algolia.Index
}

func NewAlgoliaIndex(cfg config.AlgoliaConfig, name string) (*AlgoliaIndex, error) {
	if strings.TrimSpace(cfg.AppID) == "" || strings.TrimSpace(cfg.AdminKey) == "" {
		return nil, errors.New("algolia app id and admin key are required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("algolia index name is required")
	}

	client := algolia.NewClient(cfg.AppID, cfg.AdminKey)
	return &AlgoliaIndex{index: client.InitIndex(name)}, nil
}

// Save upserts the record. Algolia applies writes asynchronously; Save
// returns once the task is accepted.
func (a *AlgoliaIndex) Save(ctx context.Context, record PostRecord) error {
	_, err := a.index.SaveObject(record, ctx)
	return err
}

func (a *AlgoliaIndex) Delete(ctx context.Context, objectID string) error {
	_, err := a.index.DeleteObject(objectID, ctx)
	return err
}

func (a *AlgoliaIndex) Close() error {
	return nil
}
