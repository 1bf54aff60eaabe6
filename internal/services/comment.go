package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/socialmock/apiserver/internal/apierror"
	"github.com/socialmock/apiserver/internal/query"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
)

// PostCommentsDefaults apply to GET /posts/{id}/comments.
var PostCommentsDefaults = query.Defaults{Page: 1, Limit: 10, Sort: "updatedAt", Order: query.Desc}

// CommentInput is the payload of a new comment.
type CommentInput struct {
	UserID string
	Body   string
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	comments CommentRepository
	posts    PostRepository
	users    UserRepository
	now      func() time.Time
}

func NewCommentService(comments CommentRepository, posts PostRepository, users UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users, now: time.Now}
}

func (s *CommentService) Create(ctx context.Context, postID string, input CommentInput) (types.CommentWithUser, error) {
	if input.UserID == "" || strings.TrimSpace(input.Body) == "" {
		return types.CommentWithUser{}, apierror.NewValidation("userId and body are required")
	}

	if _, err := s.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.CommentWithUser{}, apierror.NewNotFound("post not found")
		}
		return types.CommentWithUser{}, err
	}
	author, err := s.author(ctx, input.UserID)
	if err != nil {
		return types.CommentWithUser{}, err
	}

	now := s.now().UTC()
	comment, err := s.comments.Insert(ctx, types.Comment{
		ID:        types.NewID(),
		PostID:    postID,
		UserID:    input.UserID,
		Body:      input.Body,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return types.CommentWithUser{}, err
	}
	return types.CommentWithUser{Comment: comment, User: &author}, nil
}

// ListForPost pages the comments of a post, embedding each author. Authors
// that no longer exist are returned as a nil user.
func (s *CommentService) ListForPost(ctx context.Context, postID string, params query.Params) ([]types.CommentWithUser, int, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	page, total := query.Apply(comments, params, query.CommentFields)

	authors := make(map[string]*types.User)
	out := make([]types.CommentWithUser, 0, len(page))
	for _, comment := range page {
		author, seen := authors[comment.UserID]
		if !seen {
			user, err := s.users.Get(ctx, comment.UserID)
			switch {
			case err == nil:
				public := user.Public()
				author = &public
			case errors.Is(err, store.ErrNotFound):
				author = nil
			default:
				return nil, 0, err
			}
			authors[comment.UserID] = author
		}
		out = append(out, types.CommentWithUser{Comment: comment, User: author})
	}
	return out, total, nil
}

// Edit lets the author replace a comment body. An empty body leaves the
// comment unchanged.
func (s *CommentService) Edit(ctx context.Context, id, userID, body string) (types.CommentWithUser, error) {
	comment, err := s.owned(ctx, id, userID, "you can only edit your own comments")
	if err != nil {
		return types.CommentWithUser{}, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return types.CommentWithUser{}, err
	}

	if body != "" {
		comment.Body = body
		comment.UpdatedAt = s.now().UTC()
		if comment, err = s.comments.Update(ctx, comment); err != nil {
			return types.CommentWithUser{}, err
		}
	}
	return types.CommentWithUser{Comment: comment, User: &author}, nil
}

// Delete lets the author remove a comment.
func (s *CommentService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID, "you can only delete your own comments"); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierror.NewNotFound("comment not found")
		}
		return err
	}
	return nil
}

func (s *CommentService) owned(ctx context.Context, id, userID, denied string) (types.Comment, error) {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Comment{}, apierror.NewNotFound("comment not found")
		}
		return types.Comment{}, err
	}
	if comment.UserID != userID {
		return types.Comment{}, apierror.NewAuthorization("unauthorized: " + denied)
	}
	return comment, nil
}

func (s *CommentService) author(ctx context.Context, userID string) (types.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apierror.NewNotFound("user not found")
		}
		return types.User{}, err
	}
	return user.Public(), nil
}
