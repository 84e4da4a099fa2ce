// Package forms validates HTML form submissions before they reach the
// services, so a missing or invalid field becomes a rendered 400 instead of
// an unhandled server error.
package forms

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Errors maps a form field name to a human-readable validation message.
type Errors map[string]string

// Form wraps submitted values and collects validation errors as fields are
// read.
type Form struct {
	values url.Values
	Errors Errors
}

// New wraps parsed form values for validation.
func New(values url.Values) *Form {
	return &Form{values: values, Errors: make(Errors)}
}

// Valid reports whether no validation errors were recorded.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// Get returns the trimmed value of a field without validating it.
func (f *Form) Get(field string) string {
	return strings.TrimSpace(f.values.Get(field))
}

// Required returns the trimmed value of a field, recording an error when the
// field is empty or longer than maxLen. A maxLen of zero disables the length
// check.
func (f *Form) Required(field string, maxLen int) string {
	value := f.Get(field)
	if value == "" {
		f.Errors[field] = "This field is required."
		return ""
	}
	if maxLen > 0 && len(value) > maxLen {
		f.Errors[field] = fmt.Sprintf("Must be at most %d characters.", maxLen)
	}
	return value
}

// IDs parses every submitted value of a multi-valued field as an integer
// identifier, recording an error on the first value that does not parse.
func (f *Form) IDs(field string) []int64 {
	raw := f.values[field]
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			f.Errors[field] = "Invalid selection."
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}
