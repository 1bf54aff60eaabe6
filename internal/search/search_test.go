package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostRecord(t *testing.T) {
	created := time.Date(2024, 2, 3, 4, 5, 6, 789000000, time.UTC)
	record := NewPostRecord(types.Post{
		ID:        "p1",
		UserID:    "u1",
		Title:     "title",
		Body:      "body",
		ImageURL:  "https://picsum.photos/800/450?random=1",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	})

	encoded, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"objectID": "p1",
		"title": "title",
		"body": "body",
		"userId": "u1",
		"imageUrl": "https://picsum.photos/800/450?random=1",
		"createdAt": 1706933106,
		"updatedAt": 1706933166
	}`, string(encoded))
}

func TestMemoryIndex(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	require.NoError(t, index.Save(ctx, PostRecord{ObjectID: "p1", Title: "a"}))
	require.NoError(t, index.Save(ctx, PostRecord{ObjectID: "p1", Title: "b"}))
	assert.Equal(t, 1, index.Len())
	record, ok := index.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "b", record.Title)

	require.NoError(t, index.Delete(ctx, "p1"))
	require.NoError(t, index.Delete(ctx, "p1"))
	assert.Equal(t, 0, index.Len())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	index, err := Open(ctx, config.Config{})
	require.NoError(t, err)
	assert.IsType(t, LogIndex{}, index)

	index, err = Open(ctx, config.Config{Search: config.SearchConfig{Driver: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &MemoryIndex{}, index)

	_, err = Open(ctx, config.Config{Search: config.SearchConfig{Driver: "algolia", IndexName: "posts"}})
	assert.Error(t, err)

	_, err = Open(ctx, config.Config{Search: config.SearchConfig{Driver: "elastic"}})
	assert.Error(t, err)
}
