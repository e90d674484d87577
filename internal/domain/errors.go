// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyText is returned when input text required for generation is empty.
	ErrEmptyText = errors.New("input text cannot be empty")

	// ErrInvalidNoteType is returned when a note type is not one of the known values.
	ErrInvalidNoteType = errors.New("invalid note type")

	// ErrInvalidPolicy is returned when a note-type policy is not a known value.
	ErrInvalidPolicy = errors.New("invalid note type policy")

	// ErrInvalidAction is returned when a generation action is not a known value.
	ErrInvalidAction = errors.New("invalid generation action")
)
