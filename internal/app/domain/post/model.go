package post

import "time"

// MaxTitleLength bounds post titles at the persistence layer.
const MaxTitleLength = 100

// Post is a piece of content owned by exactly one user. CreatedAt is assigned
// once at creation and never mutated afterwards.
type Post struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	CreatedAt time.Time
}
