package app

import (
	"github.com/blogly-app/blogly/internal/app/services/posts"
	"github.com/blogly-app/blogly/internal/app/services/tags"
	"github.com/blogly-app/blogly/internal/app/services/users"
	"github.com/blogly-app/blogly/internal/app/storage"
	"github.com/blogly-app/blogly/internal/app/storage/memory"
	"github.com/blogly-app/blogly/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users storage.UserStore
	Posts storage.PostStore
	Tags  storage.TagStore
}

// Application ties the domain services together.
type Application struct {
	log *logger.Logger

	Users *users.Service
	Posts *posts.Service
	Tags  *tags.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Tags == nil {
		stores.Tags = mem
	}

	return &Application{
		log:   log,
		Users: users.New(stores.Users, log),
		Posts: posts.New(stores.Users, stores.Posts, stores.Tags, log),
		Tags:  tags.New(stores.Tags, log),
	}
}
