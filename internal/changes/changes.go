// Package changes carries store changes over the message queue.
package changes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/types"
)

// Message attributes set on every published change.
const (
	AttrType       = "type"
	AttrCollection = "collection"
	AttrID         = "id"
)

// Channel names the queue carrying changes of one collection.
func Channel(prefix, collection string) string {
	if prefix == "" {
		return collection
	}
	return prefix + "." + collection
}

// Publisher sends every change to the channel of its collection.
type Publisher struct {
	queue  *mq.MQ
	prefix string
}

func NewPublisher(queue *mq.MQ, prefix string) *Publisher {
	return &Publisher{queue: queue, prefix: prefix}
}

// Publish implements store.ChangeSink.
func (p *Publisher) Publish(ctx context.Context, change types.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		AttrType:       string(change.Type),
		AttrCollection: change.Collection,
		AttrID:         change.ID,
	}
	if _, err := p.queue.Publish(ctx, Channel(p.prefix, change.Collection), data, attrs); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Decode parses a change message.
func Decode(msg mq.Message) (types.Change, error) {
	var change types.Change
	if err := json.Unmarshal(msg.Data, &change); err != nil {
		return types.Change{}, fmt.Errorf("decode change %s: %w", msg.ID, err)
	}
	if change.ID == "" {
		return types.Change{}, fmt.Errorf("decode change %s: missing id", msg.ID)
	}
	switch change.Type {
	case types.ChangeAdded, types.ChangeModified, types.ChangeRemoved:
	default:
		return types.Change{}, fmt.Errorf("decode change %s: unknown type %q", msg.ID, change.Type)
	}
	return change, nil
}
