package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialmock/apiserver/internal/changes"
	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/search"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingIndex struct {
	*search.MemoryIndex
	fail map[string]bool
}

func (f *failingIndex) Save(ctx context.Context, record search.PostRecord) error {
	if f.fail[record.ObjectID] {
		return errors.New("index unavailable")
	}
	return f.MemoryIndex.Save(ctx, record)
}

func TestIndexerFollowsPostChanges(t *testing.T) {
	bus := mq.NewMemoryBus()
	queue := mq.New(bus)
	index := search.NewMemoryIndex()
	st := store.NewMemory(store.WithChangeSink(changes.NewPublisher(queue, "changes")))
	posts := store.NewPostRepository(st)
	users := store.NewUserRepository(st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan error, 1)
	worker := New(queue, index, "changes")
	go func() { stopped <- worker.Run(ctx) }()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := posts.Insert(ctx, types.Post{ID: "p1", UserID: "u1", Title: "first", Body: "b", ImageURL: "img", CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)
	_, err = posts.Insert(ctx, types.Post{ID: "p2", UserID: "u1", Title: "second"})
	require.NoError(t, err)
	_, err = users.Insert(ctx, types.User{ID: "u1"})
	require.NoError(t, err)
	_, err = posts.Update(ctx, types.Post{ID: "p1", UserID: "u1", Title: "edited", CreatedAt: created, UpdatedAt: created.Add(time.Hour)})
	require.NoError(t, err)
	require.NoError(t, posts.Delete(ctx, "p2"))

	require.Eventually(t, func() bool {
		record, ok := index.Get("p1")
		_, gone := index.Get("p2")
		return ok && record.Title == "edited" && !gone
	}, time.Second, 10*time.Millisecond)

	record, _ := index.Get("p1")
	assert.Equal(t, search.PostRecord{
		ObjectID:  "p1",
		Title:     "edited",
		UserID:    "u1",
		CreatedAt: created.Unix(),
		UpdatedAt: created.Add(time.Hour).Unix(),
	}, record)
	assert.Equal(t, 1, index.Len())
	assert.Equal(t, 0, bus.Pending("changes.users"))

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("indexer did not stop")
	}
}

func TestHandleReturnsIndexFailures(t *testing.T) {
	ctx := context.Background()
	index := &failingIndex{MemoryIndex: search.NewMemoryIndex(), fail: map[string]bool{"p1": true}}
	worker := New(mq.New(mq.Discard{}), index, "changes")

	err := worker.Handle(ctx, message(t, types.Change{Type: types.ChangeAdded, Collection: "posts", ID: "p1", Document: []byte(`{"id":"p1"}`)}))
	assert.Error(t, err)

	err = worker.Handle(ctx, message(t, types.Change{Type: types.ChangeAdded, Collection: "posts", ID: "p2", Document: []byte(`{"title":"no id"}`)}))
	require.NoError(t, err)
	record, ok := index.Get("p2")
	require.True(t, ok)
	assert.Equal(t, "no id", record.Title)

	err = worker.Handle(ctx, message(t, types.Change{Type: types.ChangeModified, Collection: "posts", ID: "p3", Document: []byte(`[]`)}))
	assert.Error(t, err)

	err = worker.Handle(ctx, mq.Message{ID: "m", Data: []byte(`{}`)})
	assert.Error(t, err)

	require.NoError(t, worker.Handle(ctx, message(t, types.Change{Type: types.ChangeRemoved, Collection: "posts", ID: "missing"})))
}

func message(t *testing.T, change types.Change) mq.Message {
	t.Helper()
	queue := mq.NewMemoryBus()
	queue.Declare(change.Collection)
	require.NoError(t, changes.NewPublisher(mq.New(queue), "").Publish(context.Background(), change))

	var out mq.Message
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = queue.Subscribe(ctx, change.Collection, func(ctx context.Context, msg mq.Message) error {
		out = msg
		cancel()
		return nil
	})
	return out
}
