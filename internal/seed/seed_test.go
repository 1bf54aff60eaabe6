package seed

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/socialmock/apiserver/internal/storage"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

func fixedOptions() Options {
	opts := DefaultOptions()
	opts.Seed = 42
	opts.Now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return opts
}

func TestGenerateDefaultShape(t *testing.T) {
	opts := fixedOptions()
	data := NewGenerator(opts).Generate()

	require.Len(t, data.Users, 10)
	require.Len(t, data.Posts, 100)
	require.Len(t, data.Comments, 300)

	users := make(map[string]bool)
	usernames := make(map[string]bool)
	emails := make(map[string]bool)
	for _, u := range data.Users {
		assert.Regexp(t, objectIDPattern, u.ID)
		assert.False(t, usernames[u.Username], "duplicate username %s", u.Username)
		assert.False(t, emails[u.Email], "duplicate email %s", u.Email)
		users[u.ID] = true
		usernames[u.Username] = true
		emails[u.Email] = true
		assert.NotEmpty(t, u.Password)
		assert.NotNil(t, u.FriendIDs)
		assert.NotNil(t, u.BookmarkedPosts)
		assertInPastYear(t, opts.Now, u.CreatedAt)
	}

	posts := make(map[string]int)
	perUser := make(map[string]int)
	for _, p := range data.Posts {
		assert.True(t, users[p.UserID], "post %s has unknown author", p.ID)
		posts[p.ID] = 0
		perUser[p.UserID]++
		assertInPastYear(t, opts.Now, p.CreatedAt)
	}
	assert.Len(t, posts, 100)
	for _, n := range perUser {
		assert.Equal(t, 10, n)
	}

	for _, c := range data.Comments {
		_, ok := posts[c.PostID]
		assert.True(t, ok, "comment %s has unknown post", c.ID)
		assert.True(t, users[c.UserID], "comment %s has unknown author", c.ID)
		posts[c.PostID]++
	}
	for id, n := range posts {
		assert.Equal(t, 3, n, id)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	first := NewGenerator(fixedOptions()).Generate()
	second := NewGenerator(fixedOptions()).Generate()
	assert.Equal(t, first, second)

	other := fixedOptions()
	other.Seed = 43
	assert.NotEqual(t, first.Users[0].ID, NewGenerator(other).Generate().Users[0].ID)
}

func TestGenerateCustomSizes(t *testing.T) {
	opts := fixedOptions()
	opts.Users = 3
	opts.PostsPerUser = 2
	opts.CommentsPerPost = 0

	data := NewGenerator(opts).Generate()
	assert.Len(t, data.Users, 3)
	assert.Len(t, data.Posts, 6)
	assert.Empty(t, data.Comments)

	opts.Users = 0
	empty := NewGenerator(opts).Generate()
	assert.Empty(t, empty.Users)
	assert.Empty(t, empty.Posts)
}

func TestUniqueSuffixes(t *testing.T) {
	taken := map[string]bool{}
	assert.Equal(t, "ana", unique(taken, "ana", suffixUsername))
	assert.Equal(t, "ana2", unique(taken, "ana", suffixUsername))
	assert.Equal(t, "ana3", unique(taken, "ana", suffixUsername))

	emails := map[string]bool{}
	assert.Equal(t, "a@x.io", unique(emails, "a@x.io", suffixEmail))
	assert.Equal(t, "a2@x.io", unique(emails, "a@x.io", suffixEmail))
}

func TestSeederReplacesStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	users := store.NewUserRepository(st)
	_, err := users.Insert(ctx, types.User{ID: "stale"})
	require.NoError(t, err)

	data := NewGenerator(fixedOptions()).Generate()
	require.NoError(t, NewSeeder(st).Run(ctx, data))

	snapshot, err := st.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Users, 10)
	assert.Len(t, snapshot.Posts, 100)
	assert.Len(t, snapshot.Comments, 300)
	_, err = users.Get(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	data := NewGenerator(fixedOptions()).Generate()

	require.NoError(t, WriteFile(path, data))
	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)

	backend, err := store.OpenFileBackend(path)
	require.NoError(t, err)
	docs, err := backend.List(context.Background(), types.CollectionComments)
	require.NoError(t, err)
	assert.Len(t, docs, 300)
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	snapshots := NewSnapshots(storage.NewStorage(storage.NewMemoryStorage("test")))

	opts := fixedOptions()
	opts.Users = 2
	data := NewGenerator(opts).Generate()

	require.NoError(t, snapshots.Save(ctx, "nightly", data))
	require.NoError(t, snapshots.Save(ctx, "manual.json", data))

	names, err := snapshots.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"manual", "nightly"}, names)

	loaded, err := snapshots.Load(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, data, loaded)

	require.NoError(t, snapshots.Delete(ctx, "nightly"))
	_, err = snapshots.Load(ctx, "nightly")
	assert.Error(t, err)

	assert.Error(t, snapshots.Save(ctx, "../escape", data))
	assert.Error(t, snapshots.Save(ctx, " ", data))
}

func assertInPastYear(t *testing.T, now, date time.Time) {
	t.Helper()
	assert.False(t, date.After(now), "%s after %s", date, now)
	assert.False(t, date.Before(now.AddDate(-1, 0, 0)), "%s more than a year before %s", date, now)
}
