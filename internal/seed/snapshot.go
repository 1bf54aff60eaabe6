package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/socialmock/apiserver/internal/storage"
	"github.com/socialmock/apiserver/types"
)

const (
	snapshotPrefix      = "snapshots/"
	snapshotExtension   = ".json"
	snapshotContentType = "application/json"
)

// Snapshots stores datasets in object storage under snapshots/<name>.json.
type Snapshots struct {
	storage *storage.Storage
}

func NewSnapshots(st *storage.Storage) *Snapshots {
	return &Snapshots{storage: st}
}

// Save uploads data under name, replacing any previous snapshot.
func (s *Snapshots) Save(ctx context.Context, name string, data types.Dataset) error {
	key, err := snapshotKey(name)
	if err != nil {
		return err
	}
	if err := s.storage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", s.storage.Bucket(), err)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, key, bytes.NewReader(encoded), int64(len(encoded)), snapshotContentType); err != nil {
		return fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	return nil
}

// Load downloads the snapshot stored under name.
func (s *Snapshots) Load(ctx context.Context, name string) (types.Dataset, error) {
	key, err := snapshotKey(name)
	if err != nil {
		return types.Dataset{}, err
	}

	reader, err := s.storage.Get(ctx, key)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("download snapshot %s: %w", key, err)
	}
	defer reader.Close()

	var data types.Dataset
	if err := json.NewDecoder(reader).Decode(&data); err != nil {
		return types.Dataset{}, fmt.Errorf("parse snapshot %s: %w", key, err)
	}
	return data, nil
}

// List returns the names of the stored snapshots.
func (s *Snapshots) List(ctx context.Context) ([]string, error) {
	keys, err := s.storage.List(ctx, snapshotPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, snapshotPrefix)
		if !strings.HasSuffix(name, snapshotExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, snapshotExtension))
	}
	return names, nil
}

// Delete removes the snapshot stored under name.
func (s *Snapshots) Delete(ctx context.Context, name string) error {
	key, err := snapshotKey(name)
	if err != nil {
		return err
	}
	return s.storage.Delete(ctx, key)
}

func snapshotKey(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), snapshotExtension)
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return snapshotPrefix + name + snapshotExtension, nil
}
