// Package store persists blog posts in MongoDB or SQLite behind a single interface.
package store

import (
	"blogposts/domain"
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPostNotFound        = errors.New("post not found")
	ErrUnsupportedDatabase = errors.New("unsupported database url")
)

type PostStore interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	// GetPost returns ErrPostNotFound when no post has the given id.
	GetPost(ctx context.Context, id string) (domain.Post, error)
	// CreatePost assigns the id and returns the stored post.
	CreatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	// UpdatePost returns ErrPostNotFound when no post has the given id.
	UpdatePost(ctx context.Context, id string, u domain.PostUpdate) error
	// DeletePost succeeds whether or not the post existed.
	DeletePost(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

const sqlitePrefix = "sqlite://"

// Open picks the backend from the url scheme and connects to it.
func Open(ctx context.Context, databaseURL string) (PostStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		s, err := OpenMongo(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(databaseURL, sqlitePrefix):
		s, err := OpenSQLite(ctx, strings.TrimPrefix(databaseURL, sqlitePrefix))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, databaseURL)
}
