package api

import (
	"errors"

	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
	"github.com/quillcards/quill-api/internal/service"
)

// GenerateRequest is the payload for the card generation endpoint. Only
// text is required; everything else falls back to the configured defaults.
type GenerateRequest struct {
	Text      string   `json:"text"       validate:"required"`
	Action    string   `json:"action"     validate:"omitempty,oneof=autocomplete improve generate convert"`
	Count     int      `json:"count"      validate:"omitempty,gte=1,lte=50"`
	ConvertTo string   `json:"convert_to"`
	Deck      string   `json:"deck"`
	Tags      []string `json:"tags"`
	DryRun    bool     `json:"dry_run"`

	// Per-request overrides of the configured generation settings.
	Provider          string `json:"provider"            validate:"omitempty,oneof=openai anthropic gemini"`
	Model             string `json:"model"`
	NoteTypePolicy    string `json:"note_type_policy"    validate:"omitempty,oneof=auto prefer_basic prefer_cloze basic_only cloze_only"`
	MaxClozeDeletions int    `json:"max_cloze_deletions" validate:"omitempty,gte=1,lte=10"`
}

// CardResult reports the outcome for one card of a generated batch.
type CardResult struct {
	Index  int               `json:"index"`
	Card   domain.Card       `json:"card"`
	Fields map[string]string `json:"fields,omitempty"`
	Schema string            `json:"schema,omitempty"`
	Deck   string            `json:"deck,omitempty"`
	NoteID int64             `json:"note_id,omitempty"`
	Added  bool              `json:"added"`

	// Error and ErrorCode are set when this card failed to map or to
	// write; sibling cards are unaffected.
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// GenerateResponse is the successful response for the generation endpoint.
type GenerateResponse struct {
	Category         string       `json:"category"`
	SelectedNoteType string       `json:"selected_note_type"`
	Notes            string       `json:"notes,omitempty"`
	NeedsReview      bool         `json:"needs_review"`
	SuggestedDeck    string       `json:"suggested_deck,omitempty"`
	DeckKnown        bool         `json:"deck_known"`
	DryRun           bool         `json:"dry_run"`
	Cards            []CardResult `json:"cards"`
}

// ScoreRequest is the payload for the quality scoring endpoint.
type ScoreRequest struct {
	Cards []domain.Card `json:"cards" validate:"required,min=1"`

	Provider string `json:"provider" validate:"omitempty,oneof=openai anthropic gemini"`
	Model    string `json:"model"`
}

// ScoreResponse is the successful response for the scoring endpoint.
type ScoreResponse struct {
	Results []domain.ScoreResult `json:"results"`
}

// SchemasResponse lists the store's note schemas.
type SchemasResponse struct {
	Schemas []domain.NoteSchema `json:"schemas"`
}

// DecksResponse lists the store's decks.
type DecksResponse struct {
	Decks []domain.Deck `json:"decks"`
}

// TagsResponse lists the tags known to the store.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// newCardResult converts a pipeline outcome into its response shape.
func newCardResult(outcome service.CardOutcome) CardResult {
	result := CardResult{
		Index:  outcome.Index,
		Card:   outcome.Card,
		Deck:   outcome.Deck,
		NoteID: outcome.NoteID,
		Added:  outcome.Added,
	}
	if outcome.Note != nil {
		result.Fields = outcome.Note.Fields
		result.Schema = outcome.Note.ModelName
	}
	if outcome.Error != nil {
		result.Error = outcome.Error.Error()
		var mapErr *generation.MappingError
		if errors.As(outcome.Error, &mapErr) {
			result.ErrorCode = string(mapErr.Code)
		}
	}
	return result
}
