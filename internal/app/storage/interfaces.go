package storage

import (
	"context"
	"errors"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/domain/user"
)

// ErrNotFound is returned by every store when the requested row does not
// exist. Callers match it with errors.Is regardless of the backing
// implementation.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness constraint is violated, such as
// creating a tag whose name is already taken.
var ErrDuplicate = errors.New("duplicate record")

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)

	// DeleteUser removes the user and cascades to its posts and their tag
	// links, mirroring the foreign-key cascade in the SQL schema.
	DeleteUser(ctx context.Context, id int64) error
}

// PostStore persists post records and the post/tag association.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	UpdatePost(ctx context.Context, p post.Post) (post.Post, error)
	GetPost(ctx context.Context, id int64) (post.Post, error)
	ListPosts(ctx context.Context) ([]post.Post, error)
	ListPostsByUser(ctx context.Context, userID int64) ([]post.Post, error)
	DeletePost(ctx context.Context, id int64) error

	// ReplacePostTags swaps the full tag set of a post in one operation.
	ReplacePostTags(ctx context.Context, postID int64, tagIDs []int64) error
	ListPostTags(ctx context.Context, postID int64) ([]tag.Tag, error)
}

// TagStore persists tag records.
type TagStore interface {
	CreateTag(ctx context.Context, t tag.Tag) (tag.Tag, error)
	UpdateTag(ctx context.Context, t tag.Tag) (tag.Tag, error)
	GetTag(ctx context.Context, id int64) (tag.Tag, error)
	ListTags(ctx context.Context) ([]tag.Tag, error)
	ListPostsByTag(ctx context.Context, tagID int64) ([]post.Post, error)
	DeleteTag(ctx context.Context, id int64) error
}
