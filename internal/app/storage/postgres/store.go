package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/domain/user"
	"github.com/blogly-app/blogly/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Postgres error codes for constraint failures.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func translateErr(entity string, id any, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, id, storage.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s %v: %w", entity, id, storage.ErrDuplicate)
		case foreignKeyViolation:
			return fmt.Errorf("%s %v: %w", entity, id, storage.ErrNotFound)
		}
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, image_url)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.FirstName, u.LastName, u.ImageURL).Scan(&u.ID)
	if err != nil {
		return user.User{}, translateErr("user", u.FullName(), err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, image_url = $4
		WHERE id = $1
	`, u.ID, u.FirstName, u.LastName, u.ImageURL)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, fmt.Errorf("user %d: %w", u.ID, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, image_url
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.ImageURL)
	if err != nil {
		return user.User{}, translateErr("user", id, err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, image_url
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.ImageURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	// Posts and their tag links go with the user via ON DELETE CASCADE.
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// --- PostStore --------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, content, created_at, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.Title, p.Content, p.CreatedAt, p.UserID).Scan(&p.ID)
	if err != nil {
		return post.Post{}, translateErr("post", p.Title, err)
	}
	return p, nil
}

func (s *Store) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	// created_at and user_id stay as written at creation.
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $2, content = $3
		WHERE id = $1
		RETURNING created_at, user_id
	`, p.ID, p.Title, p.Content).Scan(&p.CreatedAt, &p.UserID)
	if err != nil {
		return post.Post{}, translateErr("post", p.ID, err)
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, user_id
		FROM posts
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UserID)
	if err != nil {
		return post.Post{}, translateErr("post", id, err)
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]post.Post, error) {
	return s.queryPosts(ctx, `
		SELECT id, title, content, created_at, user_id
		FROM posts
		ORDER BY id
	`)
}

func (s *Store) ListPostsByUser(ctx context.Context, userID int64) ([]post.Post, error) {
	return s.queryPosts(ctx, `
		SELECT id, title, content, created_at, user_id
		FROM posts
		WHERE user_id = $1
		ORDER BY id
	`, userID)
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) ReplacePostTags(ctx context.Context, postID int64, tagIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts_tags WHERE post_id = $1`, postID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts_tags (post_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tagID)
		if err != nil {
			return translateErr("tag", tagID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListPostTags(ctx context.Context, postID int64) ([]tag.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN posts_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTags(rows)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]post.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]post.Post, 0)
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UserID); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// --- TagStore ---------------------------------------------------------------

func (s *Store) CreateTag(ctx context.Context, t tag.Tag) (tag.Tag, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name)
		VALUES ($1)
		RETURNING id
	`, t.Name).Scan(&t.ID)
	if err != nil {
		return tag.Tag{}, translateErr("tag", t.Name, err)
	}
	return t, nil
}

func (s *Store) UpdateTag(ctx context.Context, t tag.Tag) (tag.Tag, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = $2 WHERE id = $1
	`, t.ID, t.Name)
	if err != nil {
		return tag.Tag{}, translateErr("tag", t.Name, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return tag.Tag{}, fmt.Errorf("tag %d: %w", t.ID, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) GetTag(ctx context.Context, id int64) (tag.Tag, error) {
	var t tag.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM tags WHERE id = $1
	`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		return tag.Tag{}, translateErr("tag", id, err)
	}
	return t, nil
}

func (s *Store) ListTags(ctx context.Context) ([]tag.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTags(rows)
}

func (s *Store) ListPostsByTag(ctx context.Context, tagID int64) ([]post.Post, error) {
	return s.queryPosts(ctx, `
		SELECT p.id, p.title, p.content, p.created_at, p.user_id
		FROM posts p
		JOIN posts_tags pt ON pt.post_id = p.id
		WHERE pt.tag_id = $1
		ORDER BY p.id
	`, tagID)
}

func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("tag %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanTags(rows *sql.Rows) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0)
	for rows.Next() {
		var t tag.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
