package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/socialmock/apiserver/internal/apierror"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
)

const (
	postImageURLFormat = "https://picsum.photos/800/450?random=%d"
	postImageMin       = 1000
	postImageMax       = 9000000
)

// PostInput is the payload of a new post.
type PostInput struct {
	UserID string
	Title  string
	Body   string
}

// PostService encapsulates post use-cases.
type PostService struct {
	posts PostRepository
	users UserRepository
	faker *gofakeit.Faker
	now   func() time.Time
}

func NewPostService(posts PostRepository, users UserRepository, faker *gofakeit.Faker) *PostService {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &PostService{posts: posts, users: users, faker: faker, now: time.Now}
}

// Create stores a post for an existing user with a random cover image.
func (s *PostService) Create(ctx context.Context, input PostInput) (types.Post, error) {
	if input.UserID == "" || strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Body) == "" {
		return types.Post{}, apierror.NewValidation("userId, title, and body are required")
	}

	if _, err := s.users.Get(ctx, input.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Post{}, apierror.NewNotFound("user not found")
		}
		return types.Post{}, err
	}

	now := s.now().UTC()
	post := types.Post{
		ID:        types.NewID(),
		UserID:    input.UserID,
		Title:     input.Title,
		Body:      input.Body,
		ImageURL:  fmt.Sprintf(postImageURLFormat, s.faker.Number(postImageMin, postImageMax)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.posts.Insert(ctx, post)
}
