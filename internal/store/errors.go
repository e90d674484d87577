package store

import "errors"

// Common errors returned by store implementations.
var (
	// ErrUnavailable is returned when the store cannot be reached at all.
	ErrUnavailable = errors.New("flashcard store unavailable")

	// ErrRejected is returned when the store reached a decision and said
	// no (duplicate note, unknown deck, malformed fields).
	ErrRejected = errors.New("flashcard store rejected the request")
)
