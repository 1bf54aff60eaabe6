package mq

import (
	"context"
	"fmt"

	"github.com/socialmock/apiserver/config"
)

// Discard accepts every publish and never delivers anything.
type Discard struct{}

func (Discard) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return "", nil
}

// Subscribe blocks until ctx is done.
func (Discard) Subscribe(ctx context.Context, channel string, handler Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (Discard) Close() error {
	return nil
}

// Open connects the backend selected by cfg.MQ.Driver.
func Open(ctx context.Context, cfg config.Config) (*MQ, error) {
	var backend Backend
	switch cfg.MQ.Driver {
	case "", "memory":
		backend = NewMemoryBus()
	case "none":
		backend = Discard{}
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		backend = client
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		backend = client
	case "nats":
		client, err := NewNATSClient(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown mq driver %q", cfg.MQ.Driver)
	}
	return New(backend), nil
}
