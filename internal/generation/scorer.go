package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/quillcards/quill-api/internal/domain"
)

// scoringRubric is the fixed system prompt for the quality pass: six
// weighted criteria summing to 10 points, and the JSON shape the model
// must reproduce.
const scoringRubric = `You are a strict reviewer of spaced-repetition flashcards. Score each card from 1 to 10 using this rubric:

- Atomicity (2 points): the card tests exactly one thing.
- Clarity (2 points): the question or deletion is unambiguous.
- Testability (2 points): the answer is objectively checkable.
- Cloze/format quality (1 point): deletion spans hide the right content; fields are used for their purpose.
- Difficulty calibration (1 point): neither trivial nor impossibly broad.
- Standalone context (2 points): the card is understandable without the source material or sibling cards.

For every card, give 2 to 4 short feedback strings. If a card scores below 7, also propose an improved version of it.

Respond with a single JSON object, no surrounding commentary, exactly this shape:
{
  "scores": [
    {
      "score": 1,
      "feedback": ["...", "..."],
      "improvedCard": {"front": "...", "back": "...", "text": "...", "tags": []}
    }
  ]
}
Return one entry per card, in input order. Omit "improvedCard" for cards scoring 7 or higher.`

// defaultFeedback is used when the model supplies no usable feedback
// strings for a card.
const defaultFeedback = "No specific feedback provided."

// maxFeedbackEntries caps how many feedback strings one result carries.
const maxFeedbackEntries = 4

// Scorer runs the quality-scoring pass: it sends card content back
// through a Generator with the rubric prompt and parses the verdicts.
// It is stateless apart from its dependencies; concurrent Score calls
// need no coordination.
type Scorer struct {
	generator Generator
	logger    *slog.Logger
}

// NewScorer creates a Scorer using the given provider adapter.
func NewScorer(generator Generator, logger *slog.Logger) (*Scorer, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Scorer{generator: generator, logger: logger}, nil
}

// Score evaluates the given cards and returns one ScoreResult per card.
// Provider and parse failures abort the whole call; per-card oddities in
// the model's verdicts (out-of-range or non-numeric scores, junk
// feedback) are repaired with the documented defaults instead.
func (s *Scorer) Score(
	ctx context.Context,
	cards []domain.Card,
	settings domain.GenerationSettings,
) ([]domain.ScoreResult, error) {
	if len(cards) == 0 {
		return nil, &ValidationError{Reason: "no cards to score", Index: -1}
	}

	messages, err := ComposeScoreMessages(cards)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "requesting quality scores",
		"card_count", len(cards),
		"provider", settings.Provider)

	text, err := s.generator.Generate(ctx, messages, settings)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Reason: "model returned no text to parse", Raw: ""}
	}

	results, err := ParseScoreResults(text)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "quality scoring complete",
		"card_count", len(cards),
		"result_count", len(results))

	return results, nil
}

// ComposeScoreMessages builds the rubric conversation: the rubric as the
// system message and the cards, serialized as JSON, as the user turn.
func ComposeScoreMessages(cards []domain.Card) ([]Message, error) {
	payload, err := json.MarshalIndent(map[string]any{"cards": cards}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cards for scoring: %w", err)
	}
	return []Message{
		{Role: RoleSystem, Content: scoringRubric},
		{Role: RoleUser, Content: "Score these flashcards:\n\n" + string(payload)},
	}, nil
}

// ParseScoreResults extracts score entries from raw model text using the
// same three-tier JSON extraction as generation parsing. A top-level
// object carrying a single "score" is accepted as a one-entry batch.
func ParseScoreResults(text string) ([]domain.ScoreResult, error) {
	candidate, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, &ParseError{
			Reason: "failed to deserialize JSON: " + err.Error(),
			Raw:    truncateRaw(candidate),
		}
	}

	entries, ok := raw["scores"].([]any)
	if !ok {
		if _, single := raw["score"]; single {
			entries = []any{raw}
		} else {
			return nil, &ValidationError{Reason: "scores array is missing", Index: -1}
		}
	}
	if len(entries) == 0 {
		return nil, &ValidationError{Reason: "scores array is empty", Index: -1}
	}

	results := make([]domain.ScoreResult, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, &ValidationError{Reason: "score entry is not an object", Index: i}
		}
		results = append(results, coerceScoreResult(obj))
	}

	return results, nil
}

// coerceScoreResult repairs one score entry: the score is clamped into
// [1,10] with rounding (defaulting to 5 when not numeric), feedback keeps
// only string entries, and the improved card is kept only when the
// clamped score is below 7, even if the model supplied one anyway.
func coerceScoreResult(obj map[string]any) domain.ScoreResult {
	score := clampScore(obj["score"])

	feedback := stringSlice(obj["feedback"])
	if len(feedback) == 0 {
		feedback = []string{defaultFeedback}
	}
	if len(feedback) > maxFeedbackEntries {
		feedback = feedback[:maxFeedbackEntries]
	}

	result := domain.ScoreResult{
		Score:    score,
		Grade:    domain.GradeForScore(score),
		Feedback: feedback,
	}

	if score < 7 {
		if improved, ok := obj["improvedCard"].(map[string]any); ok {
			card := coerceCard(improved)
			result.ImprovedCard = &card
		}
	}

	return result
}

// clampScore rounds a numeric score into [1,10]; non-numeric input
// defaults to the midpoint 5.
func clampScore(v any) int {
	n, ok := v.(float64)
	if !ok {
		return 5
	}
	score := int(math.Round(n))
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
