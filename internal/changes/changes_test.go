package changes

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ store.ChangeSink = (*Publisher)(nil)

func TestChannel(t *testing.T) {
	assert.Equal(t, "changes.posts", Channel("changes", "posts"))
	assert.Equal(t, "posts", Channel("", "posts"))
}

func TestPublishRoutesByCollection(t *testing.T) {
	bus := mq.NewMemoryBus()
	bus.Declare("changes.posts")
	bus.Declare("changes.users")
	publisher := NewPublisher(mq.New(bus), "changes")
	ctx := context.Background()

	change := types.Change{
		Type:       types.ChangeModified,
		Collection: types.CollectionPosts,
		ID:         "p1",
		Document:   json.RawMessage(`{"id":"p1","title":"t"}`),
		At:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, change))
	require.NoError(t, publisher.Publish(ctx, types.Change{Type: types.ChangeAdded, Collection: types.CollectionUsers, ID: "u1"}))

	assert.Equal(t, 1, bus.Pending("changes.posts"))
	assert.Equal(t, 1, bus.Pending("changes.users"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	received := make(chan mq.Message, 1)
	go func() {
		_ = bus.Subscribe(ctx, "changes.posts", func(ctx context.Context, msg mq.Message) error {
			received <- msg
			return nil
		})
	}()

	msg := <-received
	assert.Equal(t, "modified", msg.Attributes[AttrType])
	assert.Equal(t, "posts", msg.Attributes[AttrCollection])
	assert.Equal(t, "p1", msg.Attributes[AttrID])

	decoded, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, change.Type, decoded.Type)
	assert.Equal(t, change.ID, decoded.ID)
	assert.JSONEq(t, string(change.Document), string(decoded.Document))
	assert.True(t, change.At.Equal(decoded.At))
}

func TestDecodeRejectsBadMessages(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"missing id":   `{"type":"added","collection":"posts"}`,
		"unknown type": `{"type":"renamed","collection":"posts","id":"p1"}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(mq.Message{ID: "m", Data: []byte(data)})
			assert.Error(t, err)
		})
	}
}

func TestStoreWritesReachTheQueue(t *testing.T) {
	bus := mq.NewMemoryBus()
	bus.Declare("changes.posts")
	st := store.NewMemory(store.WithChangeSink(NewPublisher(mq.New(bus), "changes")))
	posts := store.NewPostRepository(st)
	ctx := context.Background()

	_, err := posts.Insert(ctx, types.Post{ID: "p1"})
	require.NoError(t, err)
	require.NoError(t, posts.Delete(ctx, "p1"))

	assert.Equal(t, 2, bus.Pending("changes.posts"))
	assert.Equal(t, 0, bus.Pending("changes.comments"))
}

func TestStoreWritesWithoutConsumerDoNotAccumulate(t *testing.T) {
	bus := mq.NewMemoryBus()
	bus.Declare("changes.posts")
	queue := mq.New(bus)
	st := store.NewMemory(store.WithChangeSink(NewPublisher(queue, "changes")))
	users := store.NewUserRepository(st)
	ctx := context.Background()

	for i := 0; i < 1100; i++ {
		_, err := users.Insert(ctx, types.User{ID: fmt.Sprintf("u%04d", i)})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, bus.Pending("changes.users"))

	_, err := queue.Publish(ctx, "changes.users", []byte("{}"), nil)
	assert.NoError(t, err)
}
