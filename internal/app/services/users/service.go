// Package users manages user records.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogly-app/blogly/internal/app/domain/user"
	"github.com/blogly-app/blogly/internal/app/storage"
	"github.com/blogly-app/blogly/pkg/logger"
)

// Service manages user records.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Create registers a new user. An empty image URL falls back to the default
// placeholder.
func (s *Service) Create(ctx context.Context, firstName, lastName, imageURL string) (user.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	imageURL = strings.TrimSpace(imageURL)

	if firstName == "" || lastName == "" {
		return user.User{}, fmt.Errorf("first_name and last_name are required")
	}
	if imageURL == "" {
		imageURL = user.DefaultImageURL
	}

	u, err := s.store.CreateUser(ctx, user.User{
		FirstName: firstName,
		LastName:  lastName,
		ImageURL:  imageURL,
	})
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user created")
	return u, nil
}

// Update overwrites all mutable fields of a user. There are no partial-update
// semantics; an empty image URL again resolves to the default.
func (s *Service) Update(ctx context.Context, id int64, firstName, lastName, imageURL string) (user.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	imageURL = strings.TrimSpace(imageURL)

	if firstName == "" || lastName == "" {
		return user.User{}, fmt.Errorf("first_name and last_name are required")
	}
	if imageURL == "" {
		imageURL = user.DefaultImageURL
	}

	u, err := s.store.UpdateUser(ctx, user.User{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		ImageURL:  imageURL,
	})
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user updated")
	return u, nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// Delete removes a user together with its posts.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}
