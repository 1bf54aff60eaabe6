// Package indexer keeps the post search index in step with store changes.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/socialmock/apiserver/internal/changes"
	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/search"
	"github.com/socialmock/apiserver/types"
)

// Indexer consumes post changes and applies them to a search index, one
// message per change. A failed change is returned to the broker and does
// not stop the ones after it.
type Indexer struct {
	queue   *mq.MQ
	index   search.Index
	channel string
}

// New declares the post channel on queue so changes made before Run
// starts are not lost.
func New(queue *mq.MQ, index search.Index, channelPrefix string) *Indexer {
	channel := changes.Channel(channelPrefix, types.CollectionPosts)
	queue.Declare(channel)
	return &Indexer{
		queue:   queue,
		index:   index,
		channel: channel,
	}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (i *Indexer) Run(ctx context.Context) error {
	log.Printf("indexer: listening on %s", i.channel)
	err := i.queue.Subscribe(ctx, i.channel, i.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle applies one change message to the index.
func (i *Indexer) Handle(ctx context.Context, msg mq.Message) error {
	change, err := changes.Decode(msg)
	if err != nil {
		log.Printf("indexer: %v", err)
		return err
	}
	log.Printf("indexer: change detected - type: %s, id: %s", change.Type, change.ID)

	switch change.Type {
	case types.ChangeAdded, types.ChangeModified:
		var post types.Post
		if err := json.Unmarshal(change.Document, &post); err != nil {
			err = fmt.Errorf("decode post %s: %w", change.ID, err)
			log.Printf("indexer: %v", err)
			return err
		}
		if post.ID == "" {
			post.ID = change.ID
		}
		if err := i.index.Save(ctx, search.NewPostRecord(post)); err != nil {
			log.Printf("indexer: index post %s: %v", change.ID, err)
			return err
		}
		log.Printf("indexer: indexed post %s", change.ID)
	case types.ChangeRemoved:
		if err := i.index.Delete(ctx, change.ID); err != nil {
			log.Printf("indexer: delete post %s: %v", change.ID, err)
			return err
		}
		log.Printf("indexer: deleted post %s", change.ID)
	}
	return nil
}
