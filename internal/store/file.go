package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/socialmock/apiserver/types"
)

// FileBackend is a MemoryBackend that rewrites a single JSON file after
// every mutation. The file has one top-level array per collection, the same
// layout the seed command writes.
type FileBackend struct {
	*MemoryBackend
	path string
}

// OpenFileBackend loads path if it exists and persists to it from then on.
func OpenFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}

	data, err := readDocumentFile(path)
	if err != nil {
		return nil, err
	}
	collections, err := buildCollections(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mem := NewMemoryBackend()
	mem.collections = collections

	backend := &FileBackend{MemoryBackend: mem, path: path}
	mem.afterWrite = backend.write
	return backend, nil
}

// Path returns the file the backend persists to.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) write(data map[string][]Document) error {
	out := make(map[string][]json.RawMessage, len(types.Collections))
	for _, name := range types.Collections {
		out[name] = []json.RawMessage{}
	}
	for name, docs := range data {
		raw := make([]json.RawMessage, 0, len(docs))
		for _, doc := range docs {
			raw = append(raw, doc.Data)
		}
		out[name] = raw
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func readDocumentFile(path string) (map[string][]Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string][]Document{}, nil
		}
		return nil, err
	}

	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	data := make(map[string][]Document, len(raw))
	for name, docs := range raw {
		parsed := make([]Document, 0, len(docs))
		for i, doc := range docs {
			var key struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(doc, &key); err != nil {
				return nil, fmt.Errorf("parse %s: %s[%d]: %w", path, name, i, err)
			}
			if key.ID == "" {
				return nil, fmt.Errorf("parse %s: %s[%d] has no id", path, name, i)
			}
			parsed = append(parsed, Document{ID: key.ID, Data: doc})
		}
		data[name] = parsed
	}
	return data, nil
}
