// Package mq moves change notifications between the API server and the
// sync worker over a pluggable broker.
package mq

import "context"

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	// Subscribe blocks, handling messages until ctx is done.
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes messages from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

type declarer interface {
	Declare(channel string)
}

// Declare asks the backend to keep messages on channel until a subscriber
// takes them. Backends that cannot do so ignore it.
func (m *MQ) Declare(channel string) {
	if d, ok := m.backend.(declarer); ok {
		d.Declare(channel)
	}
}

// Backend exposes the wrapped backend.
func (m *MQ) Backend() Backend {
	return m.backend
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
