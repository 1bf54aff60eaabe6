package types

import "time"

// Comment is a reply by a user on a post.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID string `json:"id"`

	// PostID identifies the post the comment belongs to.
	PostID string `json:"postId"`

	// UserID identifies the authoring user. Only this user may edit or
	// delete the comment.
	UserID string `json:"userId"`

	// Body is the comment text.
	Body string `json:"body"`

	// CreatedAt is the timestamp when the comment was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentWithUser is a comment with its author embedded.
// User is nil when the author no longer resolves.
type CommentWithUser struct {
	Comment
	User *User `json:"user"`
}
