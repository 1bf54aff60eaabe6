package query

import (
	"cmp"

	"github.com/socialmock/apiserver/types"
)

// UserFields are the listing fields of users.
var UserFields = Fields[types.User]{
	Sort: map[string]func(a, b types.User) int{
		"id":        func(a, b types.User) int { return cmp.Compare(a.ID, b.ID) },
		"username":  func(a, b types.User) int { return cmp.Compare(a.Username, b.Username) },
		"fullName":  func(a, b types.User) int { return cmp.Compare(a.FullName, b.FullName) },
		"email":     func(a, b types.User) int { return cmp.Compare(a.Email, b.Email) },
		"createdAt": func(a, b types.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt": func(a, b types.User) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
	Filter: map[string]func(types.User) string{
		"id":       func(u types.User) string { return u.ID },
		"username": func(u types.User) string { return u.Username },
		"email":    func(u types.User) string { return u.Email },
	},
}

// PostFields are the listing fields of posts.
var PostFields = Fields[types.Post]{
	Sort: map[string]func(a, b types.Post) int{
		"id":        func(a, b types.Post) int { return cmp.Compare(a.ID, b.ID) },
		"userId":    func(a, b types.Post) int { return cmp.Compare(a.UserID, b.UserID) },
		"title":     func(a, b types.Post) int { return cmp.Compare(a.Title, b.Title) },
		"createdAt": func(a, b types.Post) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt": func(a, b types.Post) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
	Filter: map[string]func(types.Post) string{
		"id":     func(p types.Post) string { return p.ID },
		"userId": func(p types.Post) string { return p.UserID },
	},
}

// CommentFields are the listing fields of comments.
var CommentFields = Fields[types.Comment]{
	Sort: map[string]func(a, b types.Comment) int{
		"id":        func(a, b types.Comment) int { return cmp.Compare(a.ID, b.ID) },
		"postId":    func(a, b types.Comment) int { return cmp.Compare(a.PostID, b.PostID) },
		"userId":    func(a, b types.Comment) int { return cmp.Compare(a.UserID, b.UserID) },
		"createdAt": func(a, b types.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt": func(a, b types.Comment) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
	Filter: map[string]func(types.Comment) string{
		"id":     func(c types.Comment) string { return c.ID },
		"postId": func(c types.Comment) string { return c.PostID },
		"userId": func(c types.Comment) string { return c.UserID },
	},
}
