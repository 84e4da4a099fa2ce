// Package tags manages the tag vocabulary shared across posts.
package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/storage"
	"github.com/blogly-app/blogly/pkg/logger"
)

// Service manages tags.
type Service struct {
	store storage.TagStore
	log   *logger.Logger
}

// New constructs a tag service.
func New(store storage.TagStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tags")
	}
	return &Service{store: store, log: log}
}

// Create registers a new tag. Names are unique; a clash surfaces as
// storage.ErrDuplicate.
func (s *Service) Create(ctx context.Context, name string) (tag.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return tag.Tag{}, fmt.Errorf("name is required")
	}

	t, err := s.store.CreateTag(ctx, tag.Tag{Name: name})
	if err != nil {
		return tag.Tag{}, err
	}
	s.log.WithField("tag_id", t.ID).WithField("name", t.Name).Info("tag created")
	return t, nil
}

// Update renames a tag, keeping the uniqueness guarantee.
func (s *Service) Update(ctx context.Context, id int64, name string) (tag.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return tag.Tag{}, fmt.Errorf("name is required")
	}

	t, err := s.store.UpdateTag(ctx, tag.Tag{ID: id, Name: name})
	if err != nil {
		return tag.Tag{}, err
	}
	s.log.WithField("tag_id", t.ID).Info("tag updated")
	return t, nil
}

// Get fetches a single tag.
func (s *Service) Get(ctx context.Context, id int64) (tag.Tag, error) {
	return s.store.GetTag(ctx, id)
}

// List returns all tags.
func (s *Service) List(ctx context.Context) ([]tag.Tag, error) {
	return s.store.ListTags(ctx)
}

// Posts returns the posts carrying a tag.
func (s *Service) Posts(ctx context.Context, tagID int64) ([]post.Post, error) {
	return s.store.ListPostsByTag(ctx, tagID)
}

// Delete removes a tag and detaches it from every post.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.log.WithField("tag_id", id).Info("tag deleted")
	return nil
}
