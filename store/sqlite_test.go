package store

import (
	"blogposts/domain"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "posts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func testPost(title string) domain.Post {
	return domain.NewPost(title, "content of "+title, domain.Author{FirstName: "J", LastName: "D"},
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
}

func TestSQLiteStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	created, err := s.CreatePost(ctx, testPost("A"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "J D", got.AuthorName())
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetPost(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSQLiteStoreListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.CreatePost(ctx, testPost(title))
		require.NoError(t, err)
	}

	posts, err = s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "first", posts[0].Title)
	assert.Equal(t, "second", posts[1].Title)
	assert.Equal(t, "third", posts[2].Title)
}

func TestSQLiteStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	original, err := s.CreatePost(ctx, testPost("A"))
	require.NoError(t, err)

	title := "A2"
	author := domain.Author{FirstName: "X"}
	require.NoError(t, s.UpdatePost(ctx, original.ID, domain.PostUpdate{Title: &title, Author: &author}))

	got, err := s.GetPost(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)
	assert.Equal(t, original.Content, got.Content)
	assert.Equal(t, "X", got.AuthorName())
	assert.Equal(t, original.Created, got.Created)
	assert.Equal(t, original.ID, got.ID)
}

func TestSQLiteStoreUpdateMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	title := "x"
	assert.ErrorIs(t, s.UpdatePost(ctx, "missing", domain.PostUpdate{Title: &title}), ErrPostNotFound)
	assert.ErrorIs(t, s.UpdatePost(ctx, "missing", domain.PostUpdate{}), ErrPostNotFound)
}

func TestSQLiteStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	p, err := s.CreatePost(ctx, testPost("A"))
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	require.NoError(t, s.DeletePost(ctx, p.ID))

	_, err = s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestOpenSQLiteTwiceKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "posts.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	p, err := s.CreatePost(ctx, testPost("A"))
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close(ctx)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}
