package api

import (
	"errors"
	"net/http"

	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
	"github.com/quillcards/quill-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Caller mistakes
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrInvalidNoteType),
		errors.Is(err, domain.ErrInvalidPolicy),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, generation.ErrUnknownBackend):
		return http.StatusBadRequest

	// Upstream model failures: the provider failed outright, or returned
	// something the parser could not turn into a valid batch.
	case errors.Is(err, generation.ErrProviderFailure),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// Flashcard store failures
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrRejected):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Raw provider bodies and internal detail stay in the logs.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, domain.ErrEmptyText):
		return "Input text cannot be empty"
	case errors.Is(err, domain.ErrInvalidNoteType):
		return "Invalid note type"
	case errors.Is(err, domain.ErrInvalidPolicy):
		return "Invalid note type policy"
	case errors.Is(err, domain.ErrInvalidAction):
		return "Invalid action"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid generation settings"
	case errors.Is(err, generation.ErrUnknownBackend):
		return "Unknown provider backend"

	case errors.Is(err, generation.ErrProviderFailure):
		return "The model provider failed to complete the request"
	case errors.Is(err, generation.ErrInvalidResponse):
		return "The model returned a response that could not be parsed"

	case errors.Is(err, store.ErrUnavailable):
		return "The flashcard store is unreachable"
	case errors.Is(err, store.ErrRejected):
		return "The flashcard store rejected the request"

	default:
		return "An unexpected error occurred"
	}
}
