package domain

// SchemaKind is the external store's type tag for a note schema.
type SchemaKind int

const (
	// SchemaKindStandard marks a generic front/back-style schema.
	SchemaKindStandard SchemaKind = 0

	// SchemaKindCloze marks a cloze-shaped schema whose text field hosts
	// numbered deletion markers.
	SchemaKindCloze SchemaKind = 1
)

// NoteSchema is the external flashcard store's definition of a note type:
// its name, type tag, and ordered field list. It is read-only to this
// application; the store owns it.
type NoteSchema struct {
	Name   string     `json:"name"`
	Kind   SchemaKind `json:"kind"`
	Fields []string   `json:"fields"`
}

// FindSchema returns the schema with the given name, or nil if absent.
// Name comparison is exact: schema names are identifiers in the store.
func FindSchema(schemas []NoteSchema, name string) *NoteSchema {
	for i := range schemas {
		if schemas[i].Name == name {
			return &schemas[i]
		}
	}
	return nil
}

// Deck identifies a deck in the external store.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MappedNote is the outcome of successfully mapping a semantic card onto a
// concrete schema: a target schema name and one entry per schema field,
// with unmapped fields holding the empty string. The map is never sparse.
type MappedNote struct {
	ModelName string            `json:"model_name"`
	Fields    map[string]string `json:"fields"`
}
