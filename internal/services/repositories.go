package services

import (
	"context"

	"github.com/socialmock/apiserver/types"
)

// Repository is the persistence surface shared by every collection.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Repository[types.User]
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Repository[types.Post]
	ListByUser(ctx context.Context, userID string) ([]types.Post, error)
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Repository[types.Comment]
	ListByPost(ctx context.Context, postID string) ([]types.Comment, error)
	ListByUser(ctx context.Context, userID string) ([]types.Comment, error)
}
