// Package resource holds the pieces shared by every record type the admin
// panel manages: identity and timestamps, calendar dates and image values.
package resource

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meta is embedded by every record. The client assigns all three values.
type Meta struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Meta) GetMeta() *Meta {
	return m
}

// Entity is satisfied by a pointer to any struct embedding Meta.
type Entity interface {
	GetMeta() *Meta
}

// Metadata columns never travel in an update patch.
var MetaColumns = []string{"id", "created_at"}

// IsDataURI reports whether an image reference is an inline upload rather
// than a remote URL.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// IsImageDataURI reports whether ref is an inline image.
func IsImageDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:image/")
}

// Blank reports whether a required text value is missing.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Optional turns an empty form value into an absent one.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
