package types

import "time"

// Post is a piece of content authored by a user.
type Post struct {
	// ID is the unique identifier of the post.
	ID string `json:"id"`

	// UserID identifies the authoring user.
	UserID string `json:"userId"`

	// Title is the headline of the post.
	Title string `json:"title"`

	// Body is the full text of the post.
	Body string `json:"body"`

	// ImageURL points to the post's cover image.
	ImageURL string `json:"imageUrl"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updatedAt"`
}
