package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/socialmock/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversInOrder(t *testing.T) {
	bus := NewMemoryBus()
	queue := New(bus)
	defer queue.Close()
	queue.Declare("changes.posts")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, body := range []string{"one", "two", "three"} {
		_, err := queue.Publish(ctx, "changes.posts", []byte(body), map[string]string{"id": body})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, bus.Pending("changes.posts"))

	var (
		mu   sync.Mutex
		got  []string
		done = make(chan struct{})
	)
	go func() {
		_ = queue.Subscribe(ctx, "changes.posts", func(ctx context.Context, msg Message) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, string(msg.Data)+"/"+msg.Attributes["id"])
			if len(got) == 3 {
				close(done)
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("messages were not delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"one/one", "two/two", "three/three"}, got)
}

func TestMemoryBusDropsFailedMessages(t *testing.T) {
	bus := NewMemoryBus()
	bus.Declare("c")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := bus.Publish(ctx, "c", []byte("bad"), nil)
	require.NoError(t, err)
	_, err = bus.Publish(ctx, "c", []byte("good"), nil)
	require.NoError(t, err)

	handled := make(chan string, 2)
	go func() {
		_ = bus.Subscribe(ctx, "c", func(ctx context.Context, msg Message) error {
			handled <- string(msg.Data)
			if string(msg.Data) == "bad" {
				return errors.New("boom")
			}
			return nil
		})
	}()

	assert.Equal(t, "bad", <-handled)
	assert.Equal(t, "good", <-handled)
	assert.Equal(t, 0, bus.Pending("c"))
}

func TestMemoryBusRejectsWhenFull(t *testing.T) {
	bus := NewMemoryBus()
	bus.Declare("c")
	ctx := context.Background()

	for i := 0; i < memoryQueueSize; i++ {
		_, err := bus.Publish(ctx, "c", nil, nil)
		require.NoError(t, err)
	}
	_, err := bus.Publish(ctx, "c", nil, nil)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestMemoryBusDropsUndeclaredChannels(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	for i := 0; i < memoryQueueSize+10; i++ {
		id, err := bus.Publish(ctx, "changes.users", []byte("x"), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}
	assert.Equal(t, 0, bus.Pending("changes.users"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	received := make(chan string, 1)
	go func() {
		_ = bus.Subscribe(ctx, "changes.users", func(ctx context.Context, msg Message) error {
			received <- string(msg.Data)
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		if _, err := bus.Publish(ctx, "changes.users", []byte("after"), nil); err != nil {
			return false
		}
		select {
		case body := <-received:
			return body == "after"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestDeclareIgnoredByOtherBackends(t *testing.T) {
	queue := New(Discard{})
	assert.NotPanics(t, func() { queue.Declare("changes.posts") })
}

func TestMemoryBusClose(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	stopped := make(chan error, 1)
	go func() {
		stopped <- bus.Subscribe(ctx, "c", func(ctx context.Context, msg Message) error { return nil })
	}()

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}

	_, err := bus.Publish(ctx, "c", nil, nil)
	assert.Error(t, err)
	_, err = bus.Publish(ctx, "", nil, nil)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	queue := New(Discard{})
	id, err := queue.Publish(context.Background(), "c", []byte("x"), nil)
	require.NoError(t, err)
	assert.Empty(t, id)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, queue.Subscribe(ctx, "c", nil), context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	queue, err := Open(ctx, config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBus{}, queue.Backend())

	queue, err = Open(ctx, config.Config{MQ: config.MQConfig{Driver: "none"}})
	require.NoError(t, err)
	assert.IsType(t, Discard{}, queue.Backend())

	_, err = Open(ctx, config.Config{MQ: config.MQConfig{Driver: "kafka"}})
	assert.Error(t, err)
}
