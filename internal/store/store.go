// Package store defines the interfaces this application consumes from the
// external flashcard store. The store owns all durable study material;
// this application only reads its catalog and appends new notes.
package store

import (
	"context"

	"github.com/quillcards/quill-api/internal/domain"
)

// SchemaLister reads the store's note schemas (name, type tag, ordered
// field list).
type SchemaLister interface {
	ListSchemas(ctx context.Context) ([]domain.NoteSchema, error)
}

// DeckLister reads the store's decks.
type DeckLister interface {
	ListDecks(ctx context.Context) ([]domain.Deck, error)
}

// TagLister reads the tags known to the store.
type TagLister interface {
	ListTags(ctx context.Context) ([]string, error)
}

// CardAdder appends one mapped note to the store and returns its assigned
// ID. The call is not idempotent and must not be retried by callers.
type CardAdder interface {
	AddCard(
		ctx context.Context,
		schemaName string,
		fields map[string]string,
		deckName string,
		tags []string,
	) (int64, error)
}

// CardStore is the full client surface the application wires at startup.
type CardStore interface {
	SchemaLister
	DeckLister
	TagLister
	CardAdder
}
