// Package service composes the generation pipeline with the external
// flashcard store: one entry point per user-facing operation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
	"github.com/quillcards/quill-api/internal/store"
)

// defaultDeckName receives cards when neither the request nor the model
// names a deck the store knows about.
const defaultDeckName = "Default"

// CardService runs the full pipeline for one request: generate, map each
// card onto a store schema, and append the mapped notes. Card-level
// failures are reported per card; only request-level failures (provider,
// parse, structural validation) abort the whole call.
type CardService struct {
	generator *generation.Service
	cardStore store.CardStore
	logger    *slog.Logger
}

// NewCardService creates a CardService with validated dependencies.
func NewCardService(
	generator *generation.Service,
	cardStore store.CardStore,
	logger *slog.Logger,
) (*CardService, error) {
	if generator == nil {
		return nil, errors.New("generation service cannot be nil")
	}
	if cardStore == nil {
		return nil, errors.New("card store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &CardService{
		generator: generator,
		cardStore: cardStore,
		logger:    logger.With("component", "card_service"),
	}, nil
}

// GenerateInput carries one generation request through the pipeline.
type GenerateInput struct {
	Action    domain.Action
	Text      string
	Count     int
	ConvertTo string

	// Deck, when set, overrides every other deck source for the batch.
	Deck string

	// Tags are merged into each generated card's tags.
	Tags []string
}

// CardOutcome reports what happened to one card of the batch. Exactly one
// of Note or Error is meaningful: a mapped card carries its note and, when
// the batch was written, the assigned note ID; a failed card carries the
// mapping or store error instead, without affecting its siblings.
type CardOutcome struct {
	Index  int
	Card   domain.Card
	Note   *domain.MappedNote
	Deck   string
	NoteID int64
	Added  bool
	Error  error
}

// GenerateOutput is the full result of one pipeline run.
type GenerateOutput struct {
	Category         generation.Category
	SelectedNoteType domain.NoteType
	Notes            string
	NeedsReview      bool

	// SuggestedDeck is the model's deck suggestion, surfaced even when
	// the store does not know the deck; DeckKnown says which case holds.
	SuggestedDeck string
	DeckKnown     bool

	Cards []CardOutcome
}

// Generate runs one request end to end. With settings.DryRun the cards
// are mapped against the store's schemas but nothing is written.
func (s *CardService) Generate(
	ctx context.Context,
	input GenerateInput,
	settings domain.GenerationSettings,
) (*GenerateOutput, error) {
	result, category, err := s.generator.Generate(ctx, generation.PromptRequest{
		Action:    input.Action,
		Text:      input.Text,
		Count:     input.Count,
		ConvertTo: input.ConvertTo,
	}, settings)
	if err != nil {
		return nil, err
	}

	schemas, err := s.cardStore.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	decks, err := s.cardStore.ListDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	deckKnown := deckExists(decks, result.SuggestedDeck)

	output := &GenerateOutput{
		Category:         category,
		SelectedNoteType: result.SelectedNoteType,
		Notes:            result.Notes,
		NeedsReview:      result.NeedsReview(),
		SuggestedDeck:    result.SuggestedDeck,
		DeckKnown:        deckKnown,
		Cards:            make([]CardOutcome, 0, len(result.Cards)),
	}

	for i, card := range result.Cards {
		card.MergeTags(input.Tags)
		outcome := CardOutcome{Index: i, Card: card}

		note, err := generation.MapCard(card, result.SelectedNoteType, schemas, settings)
		if err != nil {
			s.logger.WarnContext(ctx, "card mapping failed",
				"index", i, "error", err)
			outcome.Error = err
			output.Cards = append(output.Cards, outcome)
			continue
		}
		outcome.Note = note
		outcome.Deck = s.resolveDeck(input.Deck, card.DeckName, result.SuggestedDeck, deckKnown)

		if !settings.DryRun {
			noteID, err := s.cardStore.AddCard(ctx, note.ModelName, note.Fields, outcome.Deck, card.Tags)
			if err != nil {
				s.logger.WarnContext(ctx, "store write failed",
					"index", i, "deck", outcome.Deck, "error", err)
				outcome.Error = err
			} else {
				outcome.NoteID = noteID
				outcome.Added = true
			}
		}

		output.Cards = append(output.Cards, outcome)
	}

	s.logger.InfoContext(ctx, "pipeline run complete",
		"card_count", len(output.Cards),
		"added", countAdded(output.Cards),
		"dry_run", settings.DryRun,
		"deck_known", deckKnown)

	return output, nil
}

// Score runs the quality-scoring pass over already generated cards using
// the backend the settings select.
func (s *CardService) Score(
	ctx context.Context,
	cards []domain.Card,
	settings domain.GenerationSettings,
) ([]domain.ScoreResult, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	gen, err := s.generator.Generator(settings.Provider)
	if err != nil {
		return nil, err
	}
	scorer, err := generation.NewScorer(gen, s.logger)
	if err != nil {
		return nil, err
	}
	return scorer.Score(ctx, cards, settings)
}

// ListSchemas exposes the store's schema catalog.
func (s *CardService) ListSchemas(ctx context.Context) ([]domain.NoteSchema, error) {
	return s.cardStore.ListSchemas(ctx)
}

// ListDecks exposes the store's decks.
func (s *CardService) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	return s.cardStore.ListDecks(ctx)
}

// ListTags exposes the tags known to the store.
func (s *CardService) ListTags(ctx context.Context) ([]string, error) {
	return s.cardStore.ListTags(ctx)
}

// resolveDeck picks the target deck for one card. The request deck always
// wins; then the card's own deck; then the model's suggestion, but only
// when the store actually knows that deck.
func (s *CardService) resolveDeck(requestDeck, cardDeck, suggestedDeck string, suggestedKnown bool) string {
	if strings.TrimSpace(requestDeck) != "" {
		return strings.TrimSpace(requestDeck)
	}
	if strings.TrimSpace(cardDeck) != "" {
		return strings.TrimSpace(cardDeck)
	}
	if suggestedKnown && strings.TrimSpace(suggestedDeck) != "" {
		return strings.TrimSpace(suggestedDeck)
	}
	return defaultDeckName
}

func deckExists(decks []domain.Deck, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, deck := range decks {
		if deck.Name == name {
			return true
		}
	}
	return false
}

func countAdded(outcomes []CardOutcome) int {
	added := 0
	for _, outcome := range outcomes {
		if outcome.Added {
			added++
		}
	}
	return added
}
