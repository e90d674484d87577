package generation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/quillcards/quill-api/internal/domain"
)

// fencedBlockPattern matches a fenced block, optionally language-tagged,
// and captures its interior.
var fencedBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*(.*?)\\s*```")

// maxRawDiagnostic bounds how much of the offending model text a parse
// error carries.
const maxRawDiagnostic = 500

// ExtractJSON locates a JSON object inside arbitrary model text. Three
// tiers are tried in order, first match wins: the trimmed text itself if
// it already starts with "{"; the interior of a fenced block; the
// substring between the first "{" and the last "}". Failure to find any
// candidate yields a *ParseError wrapping ErrNoJSONFound.
func ExtractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	if m := fencedBlockPattern.FindStringSubmatch(trimmed); m != nil {
		inner := strings.TrimSpace(m[1])
		if strings.HasPrefix(inner, "{") {
			return inner, nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1], nil
	}

	return "", &ParseError{
		Reason: ErrNoJSONFound.Error(),
		Raw:    truncateRaw(text),
	}
}

// ParseGenerationResult extracts and validates a card batch from raw model
// text. Structure is checked strictly (the cards array must be present,
// non-empty, and every entry an object); individual fields are checked
// leniently, with wrongly typed values discarded rather than failing the
// card. Free-text generation reliably gets structure right but
// occasionally fills a field with the wrong primitive type.
func ParseGenerationResult(text string) (*domain.GenerationResult, error) {
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

	result := &domain.GenerationResult{
		SelectedNoteType: domain.NoteTypeBasic,
	}
	if nt, ok := domain.ParseNoteType(stringField(raw, "selectedNoteType")); ok {
		result.SelectedNoteType = nt
	}

	rawCards, ok := raw["cards"].([]any)
	if !ok || len(rawCards) == 0 {
		return nil, &ValidationError{Reason: "cards array is missing or empty", Index: -1}
	}

	result.Cards = make([]domain.Card, 0, len(rawCards))
	for i, entry := range rawCards {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, &ValidationError{Reason: "card entry is not an object", Index: i}
		}
		result.Cards = append(result.Cards, coerceCard(obj))
	}

	result.Notes = stringField(raw, "notes")
	result.SuggestedDeck = stringField(raw, "deck")

	if n, ok := raw["score"].(float64); ok {
		score := int(n)
		result.Score = &score
	}
	result.ScoreFeedback = stringSlice(raw["scoreFeedback"])

	return result, nil
}

// coerceCard builds a Card from an untyped object, field by field. Values
// of the wrong shape are dropped silently; a per-card noteType override is
// accepted only when it names one of the two known values.
func coerceCard(obj map[string]any) domain.Card {
	card := domain.Card{
		Front:     stringField(obj, "front"),
		Back:      stringField(obj, "back"),
		Text:      stringField(obj, "text"),
		Extra:     stringField(obj, "extra"),
		Code:      stringField(obj, "code"),
		Timestamp: stringField(obj, "timestamp"),
		ModelName: stringField(obj, "modelName"),
		DeckName:  stringField(obj, "deckName"),
		Tags:      stringSlice(obj["tags"]),
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}
	if nt, ok := domain.ParseNoteType(stringField(obj, "noteType")); ok {
		card.NoteType = nt
	}
	return card
}

// stringField returns the string value at key, or "" when the key is
// absent or holds a non-string.
func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// stringSlice filters an untyped array down to its string entries.
// Non-array input yields nil.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truncateRaw(s string) string {
	if len(s) <= maxRawDiagnostic {
		return s
	}
	return s[:maxRawDiagnostic] + "..."
}
