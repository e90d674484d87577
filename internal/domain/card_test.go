package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNoteType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   NoteType
		wantOK bool
	}{
		{"BASIC", NoteTypeBasic, true},
		{"basic", NoteTypeBasic, true},
		{" Cloze ", NoteTypeCloze, true},
		{"CLOZE", NoteTypeCloze, true},
		{"", "", false},
		{"reversed", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseNoteType(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEffectiveNoteType(t *testing.T) {
	t.Parallel()

	card := Card{NoteType: NoteTypeCloze}
	assert.Equal(t, NoteTypeCloze, card.EffectiveNoteType(NoteTypeBasic))

	plain := Card{}
	assert.Equal(t, NoteTypeBasic, plain.EffectiveNoteType(NoteTypeBasic))
}

func TestMergeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{
			name:     "existing tags keep their position",
			existing: []string{"go", "heaps"},
			incoming: []string{"cs", "go"},
			want:     []string{"go", "heaps", "cs"},
		},
		{
			name:     "blank and whitespace entries dropped",
			existing: []string{"go"},
			incoming: []string{"", "  ", " sql "},
			want:     []string{"go", "sql"},
		},
		{
			name:     "nil inputs yield empty slice",
			existing: nil,
			incoming: nil,
			want:     []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			card := Card{Tags: tc.existing}
			card.MergeTags(tc.incoming)
			assert.Equal(t, tc.want, card.Tags)
		})
	}
}

func TestHasContent(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Card{Front: "Q"}).HasContent(NoteTypeBasic))
	assert.True(t, (&Card{Text: "The {{c1::heap}} property"}).HasContent(NoteTypeCloze))
	assert.True(t, (&Card{Front: "fallback"}).HasContent(NoteTypeCloze))
	assert.False(t, (&Card{Back: "answer only"}).HasContent(NoteTypeBasic))
	assert.False(t, (&Card{}).HasContent(NoteTypeCloze))
}

func TestFindSchema(t *testing.T) {
	t.Parallel()

	schemas := []NoteSchema{
		{Name: "Basic", Kind: SchemaKindStandard},
		{Name: "Cloze", Kind: SchemaKindCloze},
	}

	found := FindSchema(schemas, "Cloze")
	assert.NotNil(t, found)
	assert.Equal(t, SchemaKindCloze, found.Kind)

	// Schema names are exact identifiers in the external store.
	assert.Nil(t, FindSchema(schemas, "cloze"))
	assert.Nil(t, FindSchema(schemas, "Missing"))
}
