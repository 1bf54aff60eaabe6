package store

import (
	"context"

	"github.com/socialmock/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	*Collection[types.Post]
}

func NewPostRepository(s *Store) *PostRepository {
	return &PostRepository{
		Collection: NewCollection(s, types.CollectionPosts, func(p types.Post) string { return p.ID }),
	}
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]types.Post, error) {
	return r.Filter(ctx, func(p types.Post) bool {
		return p.UserID == userID
	})
}
