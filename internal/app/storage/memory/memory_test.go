package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/domain/user"
	"github.com/blogly-app/blogly/internal/app/storage"
)

func TestDeleteUserCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{FirstName: "Joe", LastName: "Rabbit"})
	keep, _ := s.CreateUser(ctx, user.User{FirstName: "Jane", LastName: "Fox"})

	p, _ := s.CreatePost(ctx, post.Post{UserID: u.ID, Title: "t", Content: "c"})
	kept, _ := s.CreatePost(ctx, post.Post{UserID: keep.ID, Title: "stays", Content: "c"})

	golang, _ := s.CreateTag(ctx, tag.Tag{Name: "golang"})
	if err := s.ReplacePostTags(ctx, p.ID, []int64{golang.ID}); err != nil {
		t.Fatalf("replace tags: %v", err)
	}

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := s.GetPost(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected owned post to cascade, got %v", err)
	}
	if _, err := s.GetPost(ctx, kept.ID); err != nil {
		t.Fatalf("expected other user's post to survive: %v", err)
	}
	if _, err := s.GetTag(ctx, golang.ID); err != nil {
		t.Fatalf("expected tag itself to survive: %v", err)
	}
	posts, _ := s.ListPostsByTag(ctx, golang.ID)
	if len(posts) != 0 {
		t.Fatalf("expected tag links to be gone, got %d posts", len(posts))
	}
}

func TestTagListingsOrderedByName(t *testing.T) {
	s := New()
	ctx := context.Background()

	web, _ := s.CreateTag(ctx, tag.Tag{Name: "web"})
	golang, _ := s.CreateTag(ctx, tag.Tag{Name: "golang"})

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "golang" || tags[1].Name != "web" {
		t.Fatalf("expected name order, got %+v", tags)
	}

	u, _ := s.CreateUser(ctx, user.User{FirstName: "Joe", LastName: "Rabbit"})
	p, _ := s.CreatePost(ctx, post.Post{UserID: u.ID, Title: "t", Content: "c"})
	if err := s.ReplacePostTags(ctx, p.ID, []int64{web.ID, golang.ID}); err != nil {
		t.Fatalf("replace tags: %v", err)
	}

	linked, err := s.ListPostTags(ctx, p.ID)
	if err != nil {
		t.Fatalf("list post tags: %v", err)
	}
	if len(linked) != 2 || linked[0].Name != "golang" || linked[1].Name != "web" {
		t.Fatalf("expected name order, got %+v", linked)
	}
}

func TestUpdatePostPreservesImmutableFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{FirstName: "Joe", LastName: "Rabbit"})
	p, _ := s.CreatePost(ctx, post.Post{UserID: u.ID, Title: "t", Content: "c"})

	updated, err := s.UpdatePost(ctx, post.Post{ID: p.ID, Title: "new", Content: "new", UserID: 999})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UserID != u.ID {
		t.Fatalf("user_id must not be rewritable, got %d", updated.UserID)
	}
	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("created_at must not change")
	}
}

func TestReplacePostTagsDeduplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, user.User{FirstName: "Joe", LastName: "Rabbit"})
	p, _ := s.CreatePost(ctx, post.Post{UserID: u.ID, Title: "t", Content: "c"})
	golang, _ := s.CreateTag(ctx, tag.Tag{Name: "golang"})

	if err := s.ReplacePostTags(ctx, p.ID, []int64{golang.ID, golang.ID}); err != nil {
		t.Fatalf("replace tags: %v", err)
	}
	tags, _ := s.ListPostTags(ctx, p.ID)
	if len(tags) != 1 {
		t.Fatalf("expected duplicate pair to collapse, got %d", len(tags))
	}
}

func TestNotFoundErrors(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetUser(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get user: %v", err)
	}
	if _, err := s.GetPost(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get post: %v", err)
	}
	if _, err := s.GetTag(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get tag: %v", err)
	}
	if err := s.DeleteUser(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := s.CreatePost(ctx, post.Post{UserID: 7}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("create post with unknown owner: %v", err)
	}
}
