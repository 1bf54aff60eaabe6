package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/socialmock/apiserver/internal/apierror"
	"github.com/socialmock/apiserver/internal/query"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
)

const (
	avatarURLFormat = "https://picsum.photos/300/300?random=%d"
	coverURLFormat  = "https://picsum.photos/800/450?random=%d"
	// Registered users continue the numbering used by seeded profiles.
	pictureOffset = 2
)

// UsersDefaults apply to GET /users.
var UsersDefaults = query.Defaults{Page: 1, Limit: 10, Sort: "id", Order: query.Desc}

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UserDetails summarises a user's activity.
type UserDetails struct {
	Friends  int `json:"friends"`
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}

// UserService encapsulates user use-cases.
type UserService struct {
	users     UserRepository
	posts     PostRepository
	comments  CommentRepository
	passwords PasswordPolicy
	faker     *gofakeit.Faker
	now       func() time.Time
}

func NewUserService(
	users UserRepository,
	posts PostRepository,
	comments CommentRepository,
	passwords PasswordPolicy,
	faker *gofakeit.Faker,
) *UserService {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &UserService{
		users:     users,
		posts:     posts,
		comments:  comments,
		passwords: passwords,
		faker:     faker,
		now:       time.Now,
	}
}

// Login returns the user whose username and password both match.
func (s *UserService) Login(ctx context.Context, username, password string) (types.User, error) {
	if username == "" || password == "" {
		return types.User{}, apierror.NewValidation("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apierror.NewAuthentication("login failure")
		}
		return types.User{}, err
	}
	if !s.passwords.Matches(user.Password, password) {
		return types.User{}, apierror.NewAuthentication("login failure")
	}
	return user.Public(), nil
}

// Register creates a user. Email uniqueness is checked before username.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return types.User{}, apierror.NewValidation("missing required fields")
	}

	if err := s.checkUnique(ctx, "", input.Username, input.Email); err != nil {
		return types.User{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return types.User{}, err
	}

	hashed, err := s.passwords.Hash(input.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	picture := len(users) + pictureOffset
	user := types.User{
		ID:              types.NewID(),
		FullName:        input.Username,
		Username:        input.Username,
		Email:           input.Email,
		Password:        hashed,
		About:           s.faker.Paragraph(3, 4, 10, "\n"),
		Avatar:          fmt.Sprintf(avatarURLFormat, picture),
		Cover:           fmt.Sprintf(coverURLFormat, picture),
		CreatedAt:       now,
		UpdatedAt:       now,
		FriendIDs:       []string{},
		BookmarkedPosts: []string{},
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, apierror.NewConflict("user already exists")
		}
		return types.User{}, err
	}
	return created.Public(), nil
}

// ToggleBookmark adds postID to the user's bookmarks, or removes it when it
// is already there.
func (s *UserService) ToggleBookmark(ctx context.Context, userID, postID string) (types.User, error) {
	if postID == "" {
		return types.User{}, apierror.NewValidation("postId is required")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apierror.NewNotFound("post not found")
		}
		return types.User{}, err
	}

	if i := slices.Index(user.BookmarkedPosts, postID); i >= 0 {
		user.BookmarkedPosts = slices.Delete(slices.Clone(user.BookmarkedPosts), i, i+1)
	} else {
		user.BookmarkedPosts = append(slices.Clone(user.BookmarkedPosts), postID)
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	return updated.Public(), nil
}

// SetFriends replaces the user's friend list. A nil slice means the
// request did not carry an array.
func (s *UserService) SetFriends(ctx context.Context, userID string, friendIDs []string) (types.User, error) {
	if friendIDs == nil {
		return types.User{}, apierror.NewValidation("friendIds must be an array")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return types.User{}, err
	}
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}

	friends := make([]string, 0, len(friendIDs))
	for _, id := range friendIDs {
		if !known[id] {
			return types.User{}, apierror.NewValidation("invalid friendId(s) provided")
		}
		if !slices.Contains(friends, id) {
			friends = append(friends, id)
		}
	}
	user.FriendIDs = friends

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	return updated.Public(), nil
}

func (s *UserService) Details(ctx context.Context, userID string) (UserDetails, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return UserDetails{}, err
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return UserDetails{}, err
	}
	comments, err := s.comments.ListByUser(ctx, userID)
	if err != nil {
		return UserDetails{}, err
	}
	return UserDetails{
		Friends:  len(user.FriendIDs),
		Posts:    len(posts),
		Comments: len(comments),
	}, nil
}

// List returns one page of the users matching filters, leaving out exclude,
// and the total before paging.
func (s *UserService) List(ctx context.Context, exclude string, filters url.Values, params query.Params) ([]types.User, int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	users = query.Filter(users, filters, query.UserFields)
	if exclude != "" {
		users = slices.DeleteFunc(users, func(u types.User) bool { return u.ID == exclude })
	}
	page, total := query.Apply(users, params, query.UserFields)
	return types.PublicUsers(page), total, nil
}

// checkUnique reports a conflict when another user than selfID already
// holds email or username.
func (s *UserService) checkUnique(ctx context.Context, selfID, username, email string) error {
	if email != "" {
		existing, err := s.users.GetByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return apierror.NewConflict("email already registered")
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	if username != "" {
		existing, err := s.users.GetByUsername(ctx, username)
		if err == nil && existing.ID != selfID {
			return apierror.NewConflict("username already registered")
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *UserService) getUser(ctx context.Context, id string) (types.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apierror.NewNotFound("user not found")
		}
		return types.User{}, err
	}
	return user, nil
}
