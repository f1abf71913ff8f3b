package store

import (
	"blogposts/domain"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrMissingSQLitePath = errors.New("missing sqlite database path")

const postColumns = "id, author_first_name, author_last_name, title, content, created"

type SQLiteStore struct {
	DB *sql.DB
}

// OpenSQLite opens the database file named by dsn and brings its schema up to date.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, ErrMissingSQLitePath
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps writers from tripping over SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{DB: db}, nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error during database schema migration: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	p := domain.Post{}
	var created string
	if err := row.Scan(&p.ID, &p.Author.FirstName, &p.Author.LastName, &p.Title, &p.Content, &created); err != nil {
		return domain.Post{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.Post{}, fmt.Errorf("invalid created value %q: %w", created, err)
	}
	p.Created = t.UTC()
	return p, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *SQLiteStore) GetPost(ctx context.Context, id string) (domain.Post, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, ErrPostNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("error querying post %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	p.ID = uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Author.FirstName, p.Author.LastName, p.Title, p.Content, p.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return domain.Post{}, fmt.Errorf("error inserting post: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) UpdatePost(ctx context.Context, id string, u domain.PostUpdate) error {
	if u.Empty() {
		_, err := s.GetPost(ctx, id)
		return err
	}

	var sets []string
	var args []any
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *u.Content)
	}
	if u.Author != nil {
		sets = append(sets, "author_first_name = ?", "author_last_name = ?")
		args = append(args, u.Author.FirstName, u.Author.LastName)
	}
	args = append(args, id)

	result, err := s.DB.ExecContext(ctx, "UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("error updating post %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id); err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLiteStore) Close(_ context.Context) error {
	return s.DB.Close()
}
