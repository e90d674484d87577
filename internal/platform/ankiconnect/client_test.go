package ankiconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcards/quill-api/internal/config"
	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/platform/logger"
	"github.com/quillcards/quill-api/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(config.AnkiConfig{
		URL:            srv.URL,
		TimeoutSeconds: 5,
		MaxRetries:     2,
	}, logger.NewTestLogger())
	require.NoError(t, err)
	return client
}

func decodeRequest(t *testing.T, r *http.Request) rpcRequest {
	t.Helper()
	var req rpcRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func writeResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"result":` + string(raw) + `,"error":null}`))
}

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := New(config.AnkiConfig{}, logger.NewTestLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestListSchemas(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, 6, req.Version)

		switch req.Action {
		case "modelNames":
			writeResult(t, w, []string{"Basic", "Cloze"})
		case "findModelsByName":
			writeResult(t, w, []map[string]any{
				{
					"name": "Cloze",
					"type": 1,
					"flds": []map[string]any{
						{"name": "Back Extra", "ord": 1},
						{"name": "Text", "ord": 0},
					},
				},
				{
					"name": "Basic",
					"type": 0,
					"flds": []map[string]any{
						{"name": "Front", "ord": 0},
						{"name": "Back", "ord": 1},
					},
				},
			})
		default:
			t.Errorf("unexpected action %q", req.Action)
		}
	})

	schemas, err := client.ListSchemas(context.Background())

	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, domain.NoteSchema{
		Name:   "Cloze",
		Kind:   domain.SchemaKindCloze,
		Fields: []string{"Text", "Back Extra"},
	}, schemas[0])
	assert.Equal(t, domain.NoteSchema{
		Name:   "Basic",
		Kind:   domain.SchemaKindStandard,
		Fields: []string{"Front", "Back"},
	}, schemas[1])
}

func TestListSchemasEmptyStore(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		require.Equal(t, "modelNames", req.Action)
		writeResult(t, w, []string{})
	})

	schemas, err := client.ListSchemas(context.Background())

	require.NoError(t, err)
	assert.Empty(t, schemas)
}

func TestListDecksSortedByName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, map[string]int64{"Zoology": 2, "Algorithms": 1})
	})

	decks, err := client.ListDecks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Deck{
		{ID: 1, Name: "Algorithms"},
		{ID: 2, Name: "Zoology"},
	}, decks)
}

func TestListTags(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, []string{"go", "sql"})
	})

	tags, err := client.ListTags(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, tags)
}

func TestReadRetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeResult(t, w, []string{"go"})
	})

	tags, err := client.ListTags(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tags)
	assert.EqualValues(t, 2, calls.Load())
}

func TestReadExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListTags(context.Background())

	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.EqualValues(t, 3, calls.Load())
}

func TestReadRejectionDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":null,"error":"collection is not available"}`))
	})

	_, err := client.ListTags(context.Background())

	assert.ErrorIs(t, err, store.ErrRejected)
	assert.EqualValues(t, 1, calls.Load())
}

func TestAddCard(t *testing.T) {
	t.Parallel()

	var gotParams map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		require.Equal(t, "addNote", req.Action)
		gotParams = req.Params.(map[string]any)
		writeResult(t, w, int64(1700000000001))
	})

	id, err := client.AddCard(context.Background(), "Basic",
		map[string]string{"Front": "Q", "Back": "A"}, "Algorithms", []string{"go"})

	require.NoError(t, err)
	assert.EqualValues(t, 1700000000001, id)

	note := gotParams["note"].(map[string]any)
	assert.Equal(t, "Algorithms", note["deckName"])
	assert.Equal(t, "Basic", note["modelName"])
	assert.Equal(t, map[string]any{"Front": "Q", "Back": "A"}, note["fields"])
	assert.Equal(t, []any{"go"}, note["tags"])
	options := note["options"].(map[string]any)
	assert.Equal(t, false, options["allowDuplicate"])
}

func TestAddCardRejected(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":null,"error":"cannot create note because it is a duplicate"}`))
	})

	_, err := client.AddCard(context.Background(), "Basic",
		map[string]string{"Front": "Q", "Back": "A"}, "Default", nil)

	assert.ErrorIs(t, err, store.ErrRejected)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAddCardDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.AddCard(context.Background(), "Basic",
		map[string]string{"Front": "Q"}, "Default", nil)

	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}
