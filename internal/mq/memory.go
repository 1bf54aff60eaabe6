package mq

import (
	"context"
	"errors"
	"log"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const memoryQueueSize = 1024

// ErrQueueFull is returned by MemoryBus.Publish when a channel holds
// memoryQueueSize undelivered messages.
var ErrQueueFull = errors.New("memory queue full")

// MemoryBus is an in-process broker. A channel holds messages only once it
// has been declared, by Declare or by a subscriber; messages for other
// channels are dropped. Each declared channel is a buffered queue and
// concurrent subscribers on one channel compete for messages.
type MemoryBus struct {
	mu     sync.Mutex
	queues map[string]chan Message
	closed chan struct{}
	once   sync.Once
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		queues: make(map[string]chan Message),
		closed: make(chan struct{}),
	}
}

// Declare creates the queue for channel so it keeps messages published
// before a subscriber arrives.
func (b *MemoryBus) Declare(channel string) {
	b.queue(channel)
}

// Publish enqueues a message on a declared channel and drops it otherwise.
// A full queue rejects the message so writers never wait on a slow
// subscriber.
func (b *MemoryBus) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("memory channel is required")
	}

	message := Message{
		ID:         uuid.NewString(),
		Data:       append([]byte(nil), data...),
		Attributes: maps.Clone(attrs),
	}

	select {
	case <-b.closed:
		return "", errors.New("memory bus closed")
	default:
	}

	queue, ok := b.declared(channel)
	if !ok {
		return message.ID, nil
	}
	select {
	case queue <- message:
		return message.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		return "", ErrQueueFull
	}
}

// Subscribe handles messages on channel until ctx is done or the bus is
// closed. A failed message is logged and not redelivered.
func (b *MemoryBus) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("memory channel is required")
	}

	queue := b.queue(channel)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closed:
			return nil
		case message := <-queue:
			if err := handler(ctx, message); err != nil {
				log.Printf("memory: dropped %s on %s: %v", message.ID, channel, err)
			}
		}
	}
}

// Close stops subscribers and rejects further publishes.
func (b *MemoryBus) Close() error {
	b.once.Do(func() {
		close(b.closed)
	})
	return nil
}

// Pending reports how many messages wait on channel.
func (b *MemoryBus) Pending(channel string) int {
	queue, _ := b.declared(channel)
	return len(queue)
}

func (b *MemoryBus) declared(channel string) (chan Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue, ok := b.queues[channel]
	return queue, ok
}

func (b *MemoryBus) queue(channel string) chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue, ok := b.queues[channel]
	if !ok {
		queue = make(chan Message, memoryQueueSize)
		b.queues[channel] = queue
	}
	return queue
}
