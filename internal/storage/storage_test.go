package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/socialmock/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	st := NewStorage(NewMemoryStorage("snapshots"))
	require.NoError(t, st.EnsureBucket(ctx))
	assert.Equal(t, "snapshots", st.Bucket())

	for _, key := range []string{"b/2.json", "a/1.json", "b/1.json"} {
		require.NoError(t, st.Put(ctx, key, strings.NewReader(key), int64(len(key)), "application/json"))
	}

	keys, err := st.List(ctx, "b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/1.json", "b/2.json"}, keys)

	reader, err := st.Get(ctx, "a/1.json")
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "a/1.json", string(content))

	require.NoError(t, st.Delete(ctx, "a/1.json"))
	_, err = st.Get(ctx, "a/1.json")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, config.Config{
		ObjectStorage: config.ObjectStorageConfig{Driver: "minio"},
		Minio:         config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"},
	})
	assert.Error(t, err)

	_, err = Open(ctx, config.Config{ObjectStorage: config.ObjectStorageConfig{Driver: "s3"}})
	assert.Error(t, err)
}
