// Package seed generates fake social data and loads it into a store.
package seed

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/socialmock/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	avatarURLFormat    = "https://picsum.photos/300/300?random=%d"
	coverURLFormat     = "https://picsum.photos/800/450?random=%d"
	postImageURLFormat = "https://picsum.photos/800/450?random=%d"
)

// Options size the generated dataset.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// Seed makes generation reproducible. Zero picks a random seed.
	Seed int64
	// Now anchors the generated dates, which fall in the year before it.
	Now time.Time
}

// DefaultOptions returns 10 users with 10 posts each and 3 comments per post.
func DefaultOptions() Options {
	return Options{
		Users:           10,
		PostsPerUser:    10,
		CommentsPerPost: 3,
	}
}

// Generator builds datasets from fake data.
type Generator struct {
	opts  Options
	faker *gofakeit.Faker
}

func NewGenerator(opts Options) *Generator {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return &Generator{opts: opts, faker: gofakeit.New(opts.Seed)}
}

// Generate returns Users users, PostsPerUser posts per user and
// CommentsPerPost comments per post. Comment authors are drawn from all
// users. Usernames and emails are unique.
func (g *Generator) Generate() types.Dataset {
	data := types.Dataset{
		Users:    make([]types.User, 0, g.opts.Users),
		Posts:    make([]types.Post, 0, g.opts.Users*g.opts.PostsPerUser),
		Comments: make([]types.Comment, 0, g.opts.Users*g.opts.PostsPerUser*g.opts.CommentsPerPost),
	}

	usernames := make(map[string]bool, g.opts.Users)
	emails := make(map[string]bool, g.opts.Users)
	for i := 0; i < g.opts.Users; i++ {
		date := g.pastDate()
		data.Users = append(data.Users, types.User{
			ID:              g.objectID(date),
			FullName:        g.faker.Name(),
			Username:        unique(usernames, g.faker.Username(), suffixUsername),
			Password:        g.faker.Password(true, true, true, false, false, 12),
			Email:           unique(emails, strings.ToLower(g.faker.Email()), suffixEmail),
			About:           g.faker.Paragraph(2, 4, 10, "\n"),
			Avatar:          fmt.Sprintf(avatarURLFormat, i),
			Cover:           fmt.Sprintf(coverURLFormat, i),
			CreatedAt:       date,
			UpdatedAt:       date,
			FriendIDs:       []string{},
			BookmarkedPosts: []string{},
		})
	}

	postCounter := 0
	for _, user := range data.Users {
		for j := 0; j < g.opts.PostsPerUser; j++ {
			date := g.pastDate()
			post := types.Post{
				ID:        g.objectID(date),
				UserID:    user.ID,
				Title:     g.faker.Sentence(8),
				Body:      g.faker.Paragraph(3, 4, 12, "\n") + g.faker.Paragraph(3, 4, 12, "\n"),
				ImageURL:  fmt.Sprintf(postImageURLFormat, postCounter),
				CreatedAt: date,
				UpdatedAt: date,
			}
			data.Posts = append(data.Posts, post)
			postCounter++

			for k := 0; k < g.opts.CommentsPerPost; k++ {
				date := g.pastDate()
				author := data.Users[g.faker.IntRange(0, len(data.Users)-1)]
				data.Comments = append(data.Comments, types.Comment{
					ID:        g.objectID(date),
					PostID:    post.ID,
					UserID:    author.ID,
					Body:      g.faker.Sentence(12),
					CreatedAt: date,
					UpdatedAt: date,
				})
			}
		}
	}

	return data
}

func (g *Generator) pastDate() time.Time {
	end := g.opts.Now.UTC()
	return g.faker.DateRange(end.AddDate(-1, 0, 0), end).Truncate(time.Millisecond)
}

// objectID builds an ObjectID from date and the generator's randomness, so
// a fixed seed yields fixed ids.
func (g *Generator) objectID(date time.Time) string {
	var id primitive.ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(date.Unix()))
	binary.BigEndian.PutUint64(id[4:12], g.faker.Uint64())
	return id.Hex()
}

func unique(taken map[string]bool, value string, suffix func(string, int) string) string {
	candidate := value
	for n := 2; taken[candidate]; n++ {
		candidate = suffix(value, n)
	}
	taken[candidate] = true
	return candidate
}

func suffixUsername(value string, n int) string {
	return fmt.Sprintf("%s%d", value, n)
}

func suffixEmail(value string, n int) string {
	local, domain, ok := strings.Cut(value, "@")
	if !ok {
		return fmt.Sprintf("%s%d", value, n)
	}
	return fmt.Sprintf("%s%d@%s", local, n, domain)
}
