package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
)

// Seeder replaces the content of a store with a dataset.
type Seeder struct {
	store *store.Store
}

func NewSeeder(st *store.Store) *Seeder {
	return &Seeder{store: st}
}

// Run writes data as the whole store content. Whether a failure leaves
// the previous content in place depends on the store backend.
func (s *Seeder) Run(ctx context.Context, data types.Dataset) error {
	if err := s.store.Reset(ctx, data); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	log.Printf("seeded %d users, %d posts, %d comments", len(data.Users), len(data.Posts), len(data.Comments))
	return nil
}

// WriteFile writes data as JSON to path.
func WriteFile(path string, data types.Dataset) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

// ReadFile reads a dataset written by WriteFile.
func ReadFile(path string) (types.Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.Dataset{}, err
	}
	var data types.Dataset
	if err := json.Unmarshal(content, &data); err != nil {
		return types.Dataset{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}
