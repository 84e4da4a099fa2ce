package forms

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	f := New(url.Values{
		"first_name": {"  Joe  "},
		"last_name":  {""},
	})

	assert.Equal(t, "Joe", f.Required("first_name", 30))
	f.Required("last_name", 30)
	f.Required("missing", 30)

	assert.False(t, f.Valid())
	assert.Contains(t, f.Errors, "last_name")
	assert.Contains(t, f.Errors, "missing")
	assert.NotContains(t, f.Errors, "first_name")
}

func TestRequiredMaxLength(t *testing.T) {
	f := New(url.Values{"title": {"this title is far far far far too long"}})

	f.Required("title", 10)
	assert.False(t, f.Valid())

	f = New(url.Values{"content": {"unbounded text can be any length at all"}})
	f.Required("content", 0)
	assert.True(t, f.Valid())
}

func TestIDs(t *testing.T) {
	f := New(url.Values{"tags": {"1", " 2", "3"}})
	assert.Equal(t, []int64{1, 2, 3}, f.IDs("tags"))
	assert.True(t, f.Valid())

	f = New(url.Values{"tags": {"1", "nope"}})
	f.IDs("tags")
	assert.False(t, f.Valid())

	f = New(url.Values{})
	assert.Empty(t, f.IDs("tags"))
	assert.True(t, f.Valid())
}
