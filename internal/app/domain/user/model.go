package user

// DefaultImageURL is the placeholder profile image applied when a user is
// created without one.
const DefaultImageURL = "https://rithm-students-assets.s3.amazonaws.com/r27/exercises/flask-blogly/handout/_images/detail.png"

// MaxNameLength bounds first and last names at the persistence layer.
const MaxNameLength = 30

// User represents a registered author who owns zero or more posts.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	ImageURL  string
}

// FullName returns the display name used by list and detail pages.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
