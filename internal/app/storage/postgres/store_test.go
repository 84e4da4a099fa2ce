package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/domain/user"
	"github.com/blogly-app/blogly/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateUserReturnsAssignedID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Joe", "Rabbit", user.DefaultImageURL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	u, err := store.CreateUser(context.Background(), user.User{
		FirstName: "Joe",
		LastName:  "Rabbit",
		ImageURL:  user.DefaultImageURL,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("expected id 7, got %d", u.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserMissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, first_name, last_name, image_url`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUser(context.Background(), 42)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserMissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(int64(42), "Joe", "Rabbit", user.DefaultImageURL).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateUser(context.Background(), user.User{
		ID:        42,
		FirstName: "Joe",
		LastName:  "Rabbit",
		ImageURL:  user.DefaultImageURL,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTagUniqueViolationIsDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO tags`).
		WithArgs("golang").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := store.CreateTag(context.Background(), tag.Tag{Name: "golang"})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestReplacePostTagsFKViolationIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM posts_tags`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO posts_tags`).
		WithArgs(int64(3), int64(999)).
		WillReturnError(&pq.Error{Code: foreignKeyViolation})
	mock.ExpectRollback()

	err := store.ReplacePostTags(context.Background(), 3, []int64{999})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing tag row, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.DeleteUser(context.Background(), 7); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteUser(context.Background(), 8); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplacePostTagsRunsInTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM posts_tags`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO posts_tags`).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.ReplacePostTags(context.Background(), 3, []int64{1}); err != nil {
		t.Fatalf("replace post tags: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Full round trip against a real database, gated on TEST_POSTGRES_DSN.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := New(db)

	u, err := store.CreateUser(ctx, user.User{FirstName: "Joe", LastName: "Rabbit", ImageURL: user.DefaultImageURL})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	defer store.DeleteUser(ctx, u.ID)

	p, err := store.CreatePost(ctx, post.Post{UserID: u.ID, Title: "post one", Content: "content of post one"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	owned, err := store.ListPostsByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list posts by user: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != p.ID {
		t.Fatalf("expected owner to list the post, got %+v", owned)
	}

	// FK cascade: deleting the user removes the post.
	if err := store.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := store.GetPost(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cascade to remove post, got %v", err)
	}
}
