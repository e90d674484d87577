package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quillcards/quill-api/internal/domain"
)

// Service orchestrates one generation request: classification, prompt
// composition, the single provider call, and response parsing, in that
// order. It holds no mutable state; concurrent requests are independent.
type Service struct {
	providers map[string]Generator
	logger    *slog.Logger
}

// NewService creates a Service over the given provider registry, keyed by
// backend name.
func NewService(providers map[string]Generator, logger *slog.Logger) (*Service, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider adapter is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Service{providers: providers, logger: logger}, nil
}

// Generator returns the adapter registered for the named backend.
func (s *Service) Generator(backend string) (Generator, error) {
	gen, ok := s.providers[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return gen, nil
}

// Generate runs the pipeline for one request and returns the parsed batch
// together with the content category the input classified as. Provider,
// parse, and validation failures abort the whole request.
func (s *Service) Generate(
	ctx context.Context,
	req PromptRequest,
	settings domain.GenerationSettings,
) (*domain.GenerationResult, Category, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, CategoryGeneral, domain.ErrEmptyText
	}
	if err := settings.Validate(); err != nil {
		return nil, CategoryGeneral, err
	}

	gen, err := s.Generator(settings.Provider)
	if err != nil {
		return nil, CategoryGeneral, err
	}

	category := Classify(req.Text)
	messages := ComposeMessages(req, settings, category)

	s.logger.InfoContext(ctx, "requesting card generation",
		"provider", settings.Provider,
		"model", settings.Model,
		"action", string(req.Action),
		"category", string(category),
		"text_length", len(req.Text))

	text, err := gen.Generate(ctx, messages, settings)
	if err != nil {
		return nil, category, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, category, &ParseError{Reason: "model returned no text to parse", Raw: ""}
	}

	result, err := ParseGenerationResult(text)
	if err != nil {
		return nil, category, err
	}

	s.logger.InfoContext(ctx, "card generation complete",
		"provider", settings.Provider,
		"card_count", len(result.Cards),
		"note_type", string(result.SelectedNoteType),
		"needs_review", result.NeedsReview())

	return result, category, nil
}
