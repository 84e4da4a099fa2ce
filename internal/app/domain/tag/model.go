package tag

// Tag is a label that can be attached to any number of posts. Names are
// unique across the whole system.
type Tag struct {
	ID   int64
	Name string
}
