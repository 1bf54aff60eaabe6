package store

import (
	"context"

	"github.com/socialmock/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	*Collection[types.Comment]
}

func NewCommentRepository(s *Store) *CommentRepository {
	return &CommentRepository{
		Collection: NewCollection(s, types.CollectionComments, func(c types.Comment) string { return c.ID }),
	}
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]types.Comment, error) {
	return r.Filter(ctx, func(c types.Comment) bool {
		return c.PostID == postID
	})
}

func (r *CommentRepository) ListByUser(ctx context.Context, userID string) ([]types.Comment, error) {
	return r.Filter(ctx, func(c types.Comment) bool {
		return c.UserID == userID
	})
}
