package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the social mock.
// It carries profile data plus the friend and bookmark sets.
type User struct {
	// ID is the unique identifier of the user (24 hex characters).
	ID string `json:"id"`

	// FullName is the user's display name.
	FullName string `json:"fullName"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username"`

	// Email is the user's email address. It is unique across users.
	Email string `json:"email"`

	// Password is the stored credential. It is plaintext unless password
	// hashing is enabled, and it is never exposed in API responses; use
	// Public before encoding a user for a client.
	Password string `json:"password,omitempty"`

	// About is a free-form biography.
	About string `json:"about"`

	// Avatar is the URL of the profile picture.
	Avatar string `json:"avatar"`

	// Cover is the URL of the profile cover image.
	Cover string `json:"cover"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the most recent update to the user.
	UpdatedAt time.Time `json:"updatedAt"`

	// FriendIDs holds the ids of the user's friends.
	FriendIDs []string `json:"friendIds"`

	// BookmarkedPosts holds the ids of posts the user bookmarked.
	BookmarkedPosts []string `json:"bookmarkedPosts"`
}

// Public returns a copy of the user that is safe to send to clients.
func (u User) Public() User {
	u.Password = ""
	u.FriendIDs = nonNil(u.FriendIDs)
	u.BookmarkedPosts = nonNil(u.BookmarkedPosts)
	return u
}

// PublicUsers applies Public to every user.
func PublicUsers(users []User) []User {
	out := make([]User, 0, len(users))
	for _, user := range users {
		out = append(out, user.Public())
	}
	return out
}

// NewID returns a fresh document id in ObjectID hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
