package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package.
var (
	// ErrProviderFailure is returned when a backend request fails at the
	// HTTP or transport level. It is never retried by this package.
	ErrProviderFailure = errors.New("provider request failed")

	// ErrNoJSONFound is returned when no JSON object can be located in
	// the model's output text.
	ErrNoJSONFound = errors.New("no JSON object found in model output")

	// ErrInvalidResponse is returned when the model's output cannot be
	// parsed or is structurally invalid.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrUnknownBackend is returned when settings name a provider that no
	// adapter was registered for.
	ErrUnknownBackend = errors.New("unknown generation backend")
)

// ProviderError reports a non-success backend response or transport
// failure. The status code and raw body are surfaced verbatim so the
// caller can diagnose the upstream failure; display layers are expected
// to truncate the body.
type ProviderError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Backend, e.Body)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Backend, e.StatusCode, e.Body)
}

// Unwrap ties every ProviderError to the ErrProviderFailure sentinel so
// callers can match the whole category with errors.Is.
func (e *ProviderError) Unwrap() error { return ErrProviderFailure }

// ParseError reports that no JSON object was found in the model text or
// that the candidate JSON failed to deserialize. Raw holds enough of the
// offending text to diagnose the failure.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrInvalidResponse }

// ValidationError reports a structurally invalid generation result, such
// as an empty card array or a non-object card entry. Index is the
// offending card position, or -1 when the failure is batch-level.
type ValidationError struct {
	Reason string
	Index  int
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid result: card %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid result: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidResponse }

// MappingErrorCode identifies the structural requirement a mapping failure
// violated.
type MappingErrorCode string

const (
	// MappingMissingSchema: the configured schema name is absent from the
	// store's schema list.
	MappingMissingSchema MappingErrorCode = "missing_schema"

	// MappingWrongKind: a schema named like the cloze convention is not
	// cloze-shaped. Never silently coerced.
	MappingWrongKind MappingErrorCode = "wrong_kind"

	// MappingNoTextField: a cloze schema has no text-bearing field.
	MappingNoTextField MappingErrorCode = "no_text_field"

	// MappingTooFewFields: a schema has fewer than two fields, so even
	// positional front/back mapping is impossible.
	MappingTooFewFields MappingErrorCode = "too_few_fields"
)

// MappingError is a recoverable, user-actionable schema mismatch. It is
// returned as data rather than treated as a request failure: one card's
// mapping problem must not discard its siblings in the batch.
type MappingError struct {
	Code       MappingErrorCode
	SchemaName string
	Reason     string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map card onto schema %q: %s", e.SchemaName, e.Reason)
}
