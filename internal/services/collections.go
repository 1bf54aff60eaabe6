package services

import (
	"context"
	"errors"

	"github.com/socialmock/apiserver/internal/query"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
)

// Collections holds the generic CRUD services of every collection.
type Collections struct {
	Users    *CollectionService[types.User]
	Posts    *CollectionService[types.Post]
	Comments *CollectionService[types.Comment]
}

// NewCollections wires generic CRUD with the record rules of each
// collection: users keep unique usernames and emails and never expose
// passwords, and deletes cascade to dependent records.
func NewCollections(
	users UserRepository,
	posts PostRepository,
	comments CommentRepository,
	passwords PasswordPolicy,
) *Collections {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	c := cascade{users: users, posts: posts, comments: comments}
	u := &UserService{users: users, passwords: passwords}

	return &Collections{
		Users: NewCollectionService(types.CollectionUsers, Repository[types.User](users), query.UserFields, CollectionHooks[types.User]{
			Prepare: u.prepareRecord,
			Cascade: c.user,
			Present: types.User.Public,
		}),
		Posts: NewCollectionService(types.CollectionPosts, Repository[types.Post](posts), query.PostFields, CollectionHooks[types.Post]{
			Cascade: c.post,
		}),
		Comments: NewCollectionService(types.CollectionComments, Repository[types.Comment](comments), query.CommentFields, CollectionHooks[types.Comment]{}),
	}
}

// prepareRecord applies user invariants to a generic write.
func (s *UserService) prepareRecord(ctx context.Context, user types.User, previous *types.User) (types.User, error) {
	if user.FriendIDs == nil {
		user.FriendIDs = []string{}
	}
	if user.BookmarkedPosts == nil {
		user.BookmarkedPosts = []string{}
	}

	if err := s.checkUnique(ctx, user.ID, user.Username, user.Email); err != nil {
		return types.User{}, err
	}

	switch {
	case previous != nil && user.Password == "":
		user.Password = previous.Password
	case previous == nil || user.Password != previous.Password:
		hashed, err := s.passwords.Hash(user.Password)
		if err != nil {
			return types.User{}, err
		}
		user.Password = hashed
	}
	return user, nil
}

type cascade struct {
	users    UserRepository
	posts    PostRepository
	comments CommentRepository
}

// post removes the comments of a deleted post.
func (c cascade) post(ctx context.Context, postID string) error {
	comments, err := c.comments.ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if err := ignoreMissing(c.comments.Delete(ctx, comment.ID)); err != nil {
			return err
		}
	}
	return nil
}

// user removes the posts and comments of a deleted user.
func (c cascade) user(ctx context.Context, userID string) error {
	posts, err := c.posts.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if err := ignoreMissing(c.posts.Delete(ctx, post.ID)); err != nil {
			return err
		}
		if err := c.post(ctx, post.ID); err != nil {
			return err
		}
	}

	comments, err := c.comments.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if err := ignoreMissing(c.comments.Delete(ctx, comment.ID)); err != nil {
			return err
		}
	}
	return nil
}

func ignoreMissing(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
