package domain

import "strings"

// NoteType identifies one of the two supported note shapes.
type NoteType string

const (
	// NoteTypeBasic is a front/back question-answer note.
	NoteTypeBasic NoteType = "BASIC"

	// NoteTypeCloze is a single-text note with numbered deletion markers.
	NoteTypeCloze NoteType = "CLOZE"
)

// ParseNoteType converts a raw string into a NoteType. The second return
// value reports whether the input was one of the known values. Matching is
// case-insensitive because the value typically arrives from model output.
func ParseNoteType(s string) (NoteType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(NoteTypeBasic):
		return NoteTypeBasic, true
	case string(NoteTypeCloze):
		return NoteTypeCloze, true
	default:
		return "", false
	}
}

// Card is the provider-independent representation of one flashcard's content
// prior to being mapped onto a concrete external schema. For a BASIC card the
// Front/Back pair is the meaningful payload; for a CLOZE card the Text field
// is. Unused fields may be empty but are preserved until mapping time.
type Card struct {
	Front     string   `json:"front,omitempty"`
	Back      string   `json:"back,omitempty"`
	Text      string   `json:"text,omitempty"`
	Extra     string   `json:"extra,omitempty"`
	Code      string   `json:"code,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Tags      []string `json:"tags"`

	// NoteType is an optional per-card override of the batch-level
	// selected note type. Empty means "use the batch default".
	NoteType NoteType `json:"noteType,omitempty"`

	// ModelName and DeckName are optional target hints from the model.
	ModelName string `json:"modelName,omitempty"`
	DeckName  string `json:"deckName,omitempty"`
}

// EffectiveNoteType resolves the card's note type against the batch-level
// default, preferring the card's own override when set.
func (c *Card) EffectiveNoteType(batchDefault NoteType) NoteType {
	if c.NoteType != "" {
		return c.NoteType
	}
	return batchDefault
}

// HasContent reports whether the card carries any usable payload for its
// effective note type.
func (c *Card) HasContent(batchDefault NoteType) bool {
	if c.EffectiveNoteType(batchDefault) == NoteTypeCloze {
		return c.Text != "" || c.Front != ""
	}
	return c.Front != "" || c.Text != ""
}

// MergeTags appends the given tags to the card, de-duplicating while
// preserving first-seen insertion order.
func (c *Card) MergeTags(tags []string) {
	seen := make(map[string]struct{}, len(c.Tags)+len(tags))
	merged := make([]string, 0, len(c.Tags)+len(tags))
	for _, t := range append(append([]string{}, c.Tags...), tags...) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		merged = append(merged, t)
	}
	c.Tags = merged
}
