package domain

import (
	"fmt"
	"strings"
)

// NoteTypePolicy controls which note shapes the model may produce.
type NoteTypePolicy string

const (
	PolicyAuto        NoteTypePolicy = "auto"
	PolicyPreferBasic NoteTypePolicy = "prefer_basic"
	PolicyPreferCloze NoteTypePolicy = "prefer_cloze"
	PolicyBasicOnly   NoteTypePolicy = "basic_only"
	PolicyClozeOnly   NoteTypePolicy = "cloze_only"
)

// ParseNoteTypePolicy converts a raw string into a NoteTypePolicy.
func ParseNoteTypePolicy(s string) (NoteTypePolicy, error) {
	switch NoteTypePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyAuto, PolicyPreferBasic, PolicyPreferCloze, PolicyBasicOnly, PolicyClozeOnly:
		return NoteTypePolicy(strings.ToLower(strings.TrimSpace(s))), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Action identifies what the caller is asking the model to do.
type Action string

const (
	// ActionAutocomplete completes a partially written draft.
	ActionAutocomplete Action = "autocomplete"

	// ActionImprove atomicizes and tightens existing field content.
	ActionImprove Action = "improve"

	// ActionGenerate produces a requested number of new cards from text.
	ActionGenerate Action = "generate"

	// ActionConvert reshapes content into a target note shape.
	ActionConvert Action = "convert"
)

// ParseAction converts a raw string into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionAutocomplete, ActionImprove, ActionGenerate, ActionConvert:
		return Action(strings.ToLower(strings.TrimSpace(s))), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// GenerationSettings carries the per-call knobs for one generation or
// scoring request. Created fresh per call and never mutated afterwards.
type GenerationSettings struct {
	// Provider selects the backend adapter ("openai", "anthropic", "gemini").
	Provider string

	// Model is the backend-specific model identifier.
	Model string

	// MaxTokens caps the output token count for the completion.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// NoteTypePolicy constrains the note shapes the model may select.
	NoteTypePolicy NoteTypePolicy

	// MaxClozeDeletions bounds the number of deletions per cloze card.
	MaxClozeDeletions int

	// DryRun maps cards without writing anything to the external store.
	DryRun bool

	// BasicModelName and ClozeModelName are the externally defined schema
	// names the field mapper resolves against ("Basic" and "Cloze" by
	// convention, but users rename them).
	BasicModelName string
	ClozeModelName string
}

// Validate checks the settings for values that would make a request
// unprocessable before any network call is made.
func (s *GenerationSettings) Validate() error {
	if s.Provider == "" {
		return fmt.Errorf("%w: provider cannot be empty", ErrValidation)
	}
	if s.Model == "" {
		return fmt.Errorf("%w: model cannot be empty", ErrValidation)
	}
	if s.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", ErrValidation)
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2]", ErrValidation)
	}
	if _, err := ParseNoteTypePolicy(string(s.NoteTypePolicy)); err != nil {
		return err
	}
	if s.MaxClozeDeletions <= 0 {
		return fmt.Errorf("%w: max cloze deletions must be positive", ErrValidation)
	}
	if s.BasicModelName == "" {
		return fmt.Errorf("%w: basic schema name cannot be empty", ErrValidation)
	}
	if s.ClozeModelName == "" {
		return fmt.Errorf("%w: cloze schema name cannot be empty", ErrValidation)
	}
	return nil
}

// GenerationResult is the validated outcome of one generation request.
type GenerationResult struct {
	// SelectedNoteType is the batch-level dominant note type.
	SelectedNoteType NoteType `json:"selectedNoteType"`

	// Cards is the non-empty ordered card batch.
	Cards []Card `json:"cards"`

	// Notes carries the model's own commentary. It may contain a
	// "NEEDS_REVIEW" marker when the model is uncertain about a fact.
	Notes string `json:"notes,omitempty"`

	// SuggestedDeck is the model's optional deck suggestion, surfaced
	// verbatim so the caller can decide what to do with unknown decks.
	SuggestedDeck string `json:"deck,omitempty"`

	// Score and ScoreFeedback are optional self-assessment values some
	// prompts ask the model to include alongside the batch.
	Score         *int     `json:"score,omitempty"`
	ScoreFeedback []string `json:"scoreFeedback,omitempty"`
}

// NeedsReview reports whether the model flagged the batch for human review.
func (r *GenerationResult) NeedsReview() bool {
	return strings.Contains(r.Notes, "NEEDS_REVIEW")
}
