package mq

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/socialmock/apiserver/config"
)

const (
	natsQueueGroup  = "socialmock"
	natsPendingMsgs = 1024
)

// NATSClient publishes on core NATS subjects. Subscribers share a queue
// group, so each message is handled by one of them. Core NATS has no
// redelivery: a failed message is logged and dropped.
type NATSClient struct {
	conn *nats.Conn
}

// NewNATSClient connects to the configured NATS server.
func NewNATSClient(cfg config.NATSConfig) (*NATSClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("nats url is required")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("socialmock"))
	if err != nil {
		return nil, err
	}
	log.Println("NATS connected successfully")

	return &NATSClient{conn: conn}, nil
}

// Publish sends a message on the named subject.
func (n *NATSClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("nats channel is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := uuid.NewString()
	msg := nats.NewMsg(channel)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, messageID)
	for key, value := range attrs {
		msg.Header.Set(key, value)
	}

	if err := n.conn.PublishMsg(msg); err != nil {
		return "", err
	}
	return messageID, nil
}

// Subscribe consumes messages on the named subject until ctx is done.
func (n *NATSClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("nats channel is required")
	}

	messages := make(chan *nats.Msg, natsPendingMsgs)
	sub, err := n.conn.ChanQueueSubscribe(channel, natsQueueGroup, messages)
	if err != nil {
		return err
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-messages:
			message := Message{
				ID:         msg.Header.Get(nats.MsgIdHdr),
				Data:       msg.Data,
				Attributes: natsHeaderToAttributes(msg.Header),
			}
			if err := handler(ctx, message); err != nil {
				log.Printf("nats: dropped %s on %s: %v", message.ID, channel, err)
			}
		}
	}
}

// Close drains pending messages and closes the connection.
func (n *NATSClient) Close() error {
	return n.conn.Drain()
}

func natsHeaderToAttributes(header nats.Header) map[string]string {
	if len(header) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(header))
	for key := range header {
		if key == nats.MsgIdHdr {
			continue
		}
		attrs[key] = header.Get(key)
	}
	return attrs
}
