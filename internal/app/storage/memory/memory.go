package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blogly-app/blogly/internal/app/domain/post"
	"github.com/blogly-app/blogly/internal/app/domain/tag"
	"github.com/blogly-app/blogly/internal/app/domain/user"
	"github.com/blogly-app/blogly/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	users    map[int64]user.User
	posts    map[int64]post.Post
	tags     map[int64]tag.Tag
	postTags map[int64][]int64 // post ID -> tag IDs
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)
var _ storage.TagStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		users:    make(map[int64]user.User),
		posts:    make(map[int64]post.Post),
		tags:     make(map[int64]tag.Tag),
		postTags: make(map[int64][]int64),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.nextIDLocked()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return user.User{}, fmt.Errorf("user %d: %w", u.ID, storage.ErrNotFound)
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	delete(s.users, id)

	// Cascade to owned posts and their tag links, like the SQL schema does.
	for postID, p := range s.posts {
		if p.UserID == id {
			delete(s.posts, postID)
			delete(s.postTags, postID)
		}
	}
	return nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return post.Post{}, fmt.Errorf("user %d: %w", p.UserID, storage.ErrNotFound)
	}

	p.ID = s.nextIDLocked()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.posts[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.posts[p.ID]
	if !ok {
		return post.Post{}, fmt.Errorf("post %d: %w", p.ID, storage.ErrNotFound)
	}

	// CreatedAt and ownership are immutable once assigned.
	p.CreatedAt = original.CreatedAt
	p.UserID = original.UserID
	s.posts[p.ID] = p
	return p, nil
}

func (s *Store) GetPost(_ context.Context, id int64) (post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListPosts(_ context.Context) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ListPostsByUser(_ context.Context, userID int64) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]post.Post, 0)
	for _, p := range s.posts {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	delete(s.posts, id)
	delete(s.postTags, id)
	return nil
}

func (s *Store) ReplacePostTags(_ context.Context, postID int64, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return fmt.Errorf("post %d: %w", postID, storage.ErrNotFound)
	}
	for _, tagID := range tagIDs {
		if _, ok := s.tags[tagID]; !ok {
			return fmt.Errorf("tag %d: %w", tagID, storage.ErrNotFound)
		}
	}

	links := make([]int64, 0, len(tagIDs))
	seen := make(map[int64]bool, len(tagIDs))
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		links = append(links, tagID)
	}
	s.postTags[postID] = links
	return nil
}

func (s *Store) ListPostTags(_ context.Context, postID int64) ([]tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, fmt.Errorf("post %d: %w", postID, storage.ErrNotFound)
	}

	result := make([]tag.Tag, 0, len(s.postTags[postID]))
	for _, tagID := range s.postTags[postID] {
		if t, ok := s.tags[tagID]; ok {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// TagStore implementation -----------------------------------------------------

func (s *Store) CreateTag(_ context.Context, t tag.Tag) (tag.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tags {
		if strings.EqualFold(existing.Name, t.Name) {
			return tag.Tag{}, fmt.Errorf("tag %q: %w", t.Name, storage.ErrDuplicate)
		}
	}

	t.ID = s.nextIDLocked()
	s.tags[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTag(_ context.Context, t tag.Tag) (tag.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[t.ID]; !ok {
		return tag.Tag{}, fmt.Errorf("tag %d: %w", t.ID, storage.ErrNotFound)
	}
	for id, existing := range s.tags {
		if id != t.ID && strings.EqualFold(existing.Name, t.Name) {
			return tag.Tag{}, fmt.Errorf("tag %q: %w", t.Name, storage.ErrDuplicate)
		}
	}
	s.tags[t.ID] = t
	return t, nil
}

func (s *Store) GetTag(_ context.Context, id int64) (tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return tag.Tag{}, fmt.Errorf("tag %d: %w", id, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTags(_ context.Context) ([]tag.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]tag.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) ListPostsByTag(_ context.Context, tagID int64) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tags[tagID]; !ok {
		return nil, fmt.Errorf("tag %d: %w", tagID, storage.ErrNotFound)
	}

	result := make([]post.Post, 0)
	for postID, tagIDs := range s.postTags {
		for _, id := range tagIDs {
			if id == tagID {
				if p, ok := s.posts[postID]; ok {
					result = append(result, p)
				}
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) DeleteTag(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return fmt.Errorf("tag %d: %w", id, storage.ErrNotFound)
	}
	delete(s.tags, id)

	for postID, tagIDs := range s.postTags {
		filtered := tagIDs[:0]
		for _, tagID := range tagIDs {
			if tagID != id {
				filtered = append(filtered, tagID)
			}
		}
		s.postTags[postID] = filtered
	}
	return nil
}
