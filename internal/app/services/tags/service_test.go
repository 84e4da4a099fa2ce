package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/blogly-app/blogly/internal/app/storage"
	"github.com/blogly-app/blogly/internal/app/storage/memory"
)

func TestService(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "golang")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Create(ctx, "golang"); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated name, got %v", err)
	}
	if _, err := svc.Create(ctx, "GOLANG"); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected name uniqueness to ignore case, got %v", err)
	}

	renamed, err := svc.Update(ctx, created.ID, "go")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if renamed.Name != "go" {
		t.Fatalf("rename not applied: %+v", renamed)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(list))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := New(memory.New(), nil)
	if _, err := svc.Create(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}
