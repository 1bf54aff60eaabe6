// Package search maintains the post search index.
package search

import (
	"context"

	"github.com/socialmock/apiserver/types"
)

// PostRecord is the indexed form of a post. Timestamps are Unix seconds.
type PostRecord struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	UserID    string `json:"userId"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// NewPostRecord projects a post onto its index record.
func NewPostRecord(post types.Post) PostRecord {
	return PostRecord{
		ObjectID:  post.ID,
		Title:     post.Title,
		Body:      post.Body,
		UserID:    post.UserID,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt.Unix(),
		UpdatedAt: post.UpdatedAt.Unix(),
	}
}

// Index stores post records. Save is an upsert keyed by ObjectID; deleting
// an absent record is not an error.
type Index interface {
	Save(ctx context.Context, record PostRecord) error
	Delete(ctx context.Context, objectID string) error
	Close() error
}
