// Package posts manages post records and their tag associations.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/storage"
	"github.com/blogly-app/blogly/pkg/logger"
)

// ErrUnknownTag reports a submitted tag ID with no matching tag record.
// Callers surface it as a validation failure rather than a missing page.
var ErrUnknownTag = errors.New("unknown tag")

// Service manages posts. It validates ownership against the user store and
// tag links against the tag store, the same way every record here hangs off
// an existing row.
type Service struct {
	users storage.UserStore
	store storage.PostStore
	tags  storage.TagStore
	log   *logger.Logger
}

// New constructs a post service.
func New(users storage.UserStore, store storage.PostStore, tags storage.TagStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	return &Service{users: users, store: store, tags: tags, log: log}
}

// validateTags checks every submitted tag ID against the tag store before any
// write happens, so a bad ID never leaves a half-created post behind.
func (s *Service) validateTags(ctx context.Context, tagIDs []int64) error {
	for _, id := range tagIDs {
		if _, err := s.tags.GetTag(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("tag %d: %w", id, ErrUnknownTag)
			}
			return err
		}
	}
	return nil
}

// Create stores a new post owned by the given user and links the supplied
// tags.
func (s *Service) Create(ctx context.Context, userID int64, title, content string, tagIDs []int64) (post.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return post.Post{}, fmt.Errorf("title and content are required")
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return post.Post{}, fmt.Errorf("owner lookup: %w", err)
	}
	if err := s.validateTags(ctx, tagIDs); err != nil {
		return post.Post{}, err
	}

	p, err := s.store.CreatePost(ctx, post.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return post.Post{}, err
	}

	if len(tagIDs) > 0 {
		if err := s.store.ReplacePostTags(ctx, p.ID, tagIDs); err != nil {
			return post.Post{}, err
		}
	}

	s.log.WithField("post_id", p.ID).
		WithField("user_id", userID).
		Info("post created")
	return p, nil
}

// Update overwrites title and content and replaces the post's tag set
// wholesale. Ownership and creation time never change.
func (s *Service) Update(ctx context.Context, id int64, title, content string, tagIDs []int64) (post.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return post.Post{}, fmt.Errorf("title and content are required")
	}
	if err := s.validateTags(ctx, tagIDs); err != nil {
		return post.Post{}, err
	}

	p, err := s.store.UpdatePost(ctx, post.Post{
		ID:      id,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return post.Post{}, err
	}

	if err := s.store.ReplacePostTags(ctx, p.ID, tagIDs); err != nil {
		return post.Post{}, err
	}

	s.log.WithField("post_id", p.ID).Info("post updated")
	return p, nil
}

// Get fetches a single post.
func (s *Service) Get(ctx context.Context, id int64) (post.Post, error) {
	return s.store.GetPost(ctx, id)
}

// List returns all posts.
func (s *Service) List(ctx context.Context) ([]post.Post, error) {
	return s.store.ListPosts(ctx)
}

// ListByUser returns all posts owned by a user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]post.Post, error) {
	return s.store.ListPostsByUser(ctx, userID)
}

// Tags returns the tags attached to a post.
func (s *Service) Tags(ctx context.Context, postID int64) ([]tag.Tag, error) {
	return s.store.ListPostTags(ctx, postID)
}

// Delete removes a post and its tag links.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.log.WithField("post_id", id).Info("post deleted")
	return nil
}
