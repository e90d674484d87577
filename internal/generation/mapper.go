package generation

import (
	"regexp"
	"strings"

	"github.com/quillcards/quill-api/internal/domain"
)

// clozePattern matches one deletion span, {{cN::inner}} or
// {{cN::inner::hint}}, capturing the inner text.
var clozePattern = regexp.MustCompile(`\{\{c\d+::(.*?)(?:::(.*?))?\}\}`)

// StripCloze replaces every deletion span in the text with its inner
// content, discarding numbering and hints.
func StripCloze(text string) string {
	return clozePattern.ReplaceAllString(text, "$1")
}

// MapCard reconciles one semantic card against the live schema list,
// producing a complete field map for the target schema. The card's own
// noteType override wins over the batch-level dominant type.
//
// Failures are returned as *MappingError values: they are recoverable,
// per-card conditions the caller surfaces for user remediation without
// discarding sibling cards. Users rename and customize schemas, so field
// names are matched case-insensitively after trimming. Structural
// violations (missing schema, wrong type tag, too few fields) fail loudly,
// because silent failure here means data loss in permanent study material.
func MapCard(
	card domain.Card,
	batchType domain.NoteType,
	schemas []domain.NoteSchema,
	settings domain.GenerationSettings,
) (*domain.MappedNote, error) {
	if card.EffectiveNoteType(batchType) == domain.NoteTypeCloze {
		return mapCloze(card, schemas, settings)
	}
	return mapBasic(card, schemas, settings)
}

// mapCloze maps a cloze card onto the configured cloze schema. When that
// schema is absent entirely, the card degrades to the basic path with all
// deletion markup stripped; when it exists but is not cloze-shaped, the
// mapping fails explicitly rather than coercing a wrong-shaped schema.
func mapCloze(
	card domain.Card,
	schemas []domain.NoteSchema,
	settings domain.GenerationSettings,
) (*domain.MappedNote, error) {
	schema := domain.FindSchema(schemas, settings.ClozeModelName)
	if schema == nil {
		stripped := card
		stripped.NoteType = domain.NoteTypeBasic
		stripped.Front = StripCloze(firstNonEmpty(card.Text, card.Front))
		stripped.Text = ""
		return mapBasic(stripped, schemas, settings)
	}

	if schema.Kind != domain.SchemaKindCloze {
		return nil, &MappingError{
			Code:       MappingWrongKind,
			SchemaName: schema.Name,
			Reason:     "schema is not cloze-shaped; cloze content cannot be written to it",
		}
	}

	textField, ok := findField(schema.Fields, func(name string) bool {
		return name == "text"
	})
	if !ok {
		return nil, &MappingError{
			Code:       MappingNoTextField,
			SchemaName: schema.Name,
			Reason:     "cloze schema has no field named \"text\" to hold the deletion text",
		}
	}

	fields := emptyFieldMap(schema)
	fields[textField] = firstNonEmpty(card.Text, card.Front)
	populateExtra(fields, schema, card)
	populateTimestamp(fields, schema, card)

	return &domain.MappedNote{ModelName: schema.Name, Fields: fields}, nil
}

// mapBasic maps a front/back card onto the configured basic schema.
// Absence of that schema is a hard failure: Basic is the floor of the
// fallback chain.
func mapBasic(
	card domain.Card,
	schemas []domain.NoteSchema,
	settings domain.GenerationSettings,
) (*domain.MappedNote, error) {
	schema := domain.FindSchema(schemas, settings.BasicModelName)
	if schema == nil {
		return nil, &MappingError{
			Code:       MappingMissingSchema,
			SchemaName: settings.BasicModelName,
			Reason:     "schema not found in the store",
		}
	}

	front := firstNonEmpty(card.Front, card.Text)
	back := card.Back

	fields := emptyFieldMap(schema)

	frontField, haveFront := findField(schema.Fields, func(name string) bool {
		return name == "front"
	})
	backField, haveBack := findField(schema.Fields, func(name string) bool {
		return name == "back"
	})

	if haveFront && haveBack {
		fields[frontField] = front
		fields[backField] = back
	} else {
		// Positional fallback: first declared field is the question
		// side, second is the answer side.
		if len(schema.Fields) < 2 {
			return nil, &MappingError{
				Code:       MappingTooFewFields,
				SchemaName: schema.Name,
				Reason:     "schema has fewer than two fields; front/back content cannot be placed",
			}
		}
		fields[schema.Fields[0]] = front
		fields[schema.Fields[1]] = back
	}

	populateExtra(fields, schema, card)
	populateCode(fields, schema, card)
	populateTimestamp(fields, schema, card)

	return &domain.MappedNote{ModelName: schema.Name, Fields: fields}, nil
}

// emptyFieldMap seeds one entry per schema field so the mapped output is
// never sparse.
func emptyFieldMap(schema *domain.NoteSchema) map[string]string {
	fields := make(map[string]string, len(schema.Fields))
	for _, name := range schema.Fields {
		fields[name] = ""
	}
	return fields
}

// findField returns the first schema field whose normalized name satisfies
// the predicate. Normalization is lowercase plus trim, applied uniformly
// before any comparison.
func findField(fields []string, match func(normalized string) bool) (string, bool) {
	for _, name := range fields {
		if match(strings.ToLower(strings.TrimSpace(name))) {
			return name, true
		}
	}
	return "", false
}

func populateExtra(fields map[string]string, schema *domain.NoteSchema, card domain.Card) {
	if card.Extra == "" {
		return
	}
	if name, ok := findField(schema.Fields, func(n string) bool {
		return n == "extra" || n == "back extra"
	}); ok {
		fields[name] = card.Extra
	}
}

func populateCode(fields map[string]string, schema *domain.NoteSchema, card domain.Card) {
	if card.Code == "" {
		return
	}
	if name, ok := findField(schema.Fields, func(n string) bool {
		return strings.Contains(n, "code")
	}); ok {
		fields[name] = card.Code
	}
}

func populateTimestamp(fields map[string]string, schema *domain.NoteSchema, card domain.Card) {
	if card.Timestamp == "" {
		return
	}
	if name, ok := findField(schema.Fields, func(n string) bool {
		return strings.Contains(n, "timestamp")
	}); ok {
		fields[name] = card.Timestamp
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
