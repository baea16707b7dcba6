package config

import (
	"github.com/dbrowse/dbrowse/internal/config/data"
)

// DefaultNumToRetrieve is the retrieval count used when nothing else sets one.
const DefaultNumToRetrieve = 10

// NewFlags creates a new Flags instance. Unset flags leave the loaded
// configuration alone.
func NewFlags() *data.Flags {
	return data.NewFlags()
}

// IsBoolSet returns true if a bool pointer is non-nil and true.
func IsBoolSet(b *bool) bool {
	return b != nil && *b
}

// IsStringSet returns true if a string pointer is non-nil and non-empty.
func IsStringSet(s *string) bool {
	return s != nil && *s != ""
}

// IsIntSet returns true if an int pointer is non-nil and positive.
func IsIntSet(n *int) bool {
	return n != nil && *n > 0
}
