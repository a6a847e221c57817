// Package id generates and validates catalog record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Record identifiers are 24 lowercase hex characters, matching the
	// format the original import pipeline assigned. Everything downstream
	// (URL params, client caches) assumes this shape.
	alphabet = "0123456789abcdef"
	length   = 24
)

// New creates a new 24-character hexadecimal record identifier.
// Returns an error if the system has insufficient entropy for secure random generation.
func New() (string, error) {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// MustNew is like New but panics if ID generation fails.
// Use only where failure should crash the program (e.g. during seeding).
func MustNew() string {
	id, err := New()
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s is a well-formed record identifier.
// Malformed identifiers must be rejected before any store lookup.
func Valid(s string) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
