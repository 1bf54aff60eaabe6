package store

import (
	"context"
	"strings"

	"github.com/socialmock/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	*Collection[types.User]
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{
		Collection: NewCollection(s, types.CollectionUsers, func(u types.User) string { return u.ID }),
	}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.Find(ctx, func(u types.User) bool {
		return u.Username == username
	})
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.Find(ctx, func(u types.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}
