package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
	"github.com/quillcards/quill-api/internal/platform/logger"
	"github.com/quillcards/quill-api/internal/service"
	"github.com/quillcards/quill-api/internal/store"
)

type stubGenerator struct {
	response string
	err      error
}

func (g *stubGenerator) Generate(
	_ context.Context,
	_ []generation.Message,
	_ domain.GenerationSettings,
) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type stubStore struct {
	schemas []domain.NoteSchema
	decks   []domain.Deck
	tags    []string
	nextID  int64
	listErr error
}

func (s *stubStore) ListSchemas(context.Context) ([]domain.NoteSchema, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.schemas, nil
}

func (s *stubStore) ListDecks(context.Context) ([]domain.Deck, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.decks, nil
}

func (s *stubStore) ListTags(context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tags, nil
}

func (s *stubStore) AddCard(
	context.Context, string, map[string]string, string, []string,
) (int64, error) {
	s.nextID++
	return s.nextID, nil
}

func newStubStore() *stubStore {
	return &stubStore{
		schemas: []domain.NoteSchema{
			{Name: "Basic", Kind: domain.SchemaKindStandard, Fields: []string{"Front", "Back"}},
			{Name: "Cloze", Kind: domain.SchemaKindCloze, Fields: []string{"Text", "Back Extra"}},
		},
		decks: []domain.Deck{{ID: 1, Name: "Default"}},
		tags:  []string{"go"},
	}
}

func baseSettings() domain.GenerationSettings {
	return domain.GenerationSettings{
		Provider:          "openai",
		Model:             "gpt-4o-mini",
		MaxTokens:         1024,
		Temperature:       0.7,
		NoteTypePolicy:    domain.PolicyAuto,
		MaxClozeDeletions: 3,
		BasicModelName:    "Basic",
		ClozeModelName:    "Cloze",
	}
}

func newTestHandler(t *testing.T, gen *stubGenerator, st *stubStore) *CardHandler {
	t.Helper()
	log := logger.NewTestLogger()

	genSvc, err := generation.NewService(map[string]generation.Generator{"openai": gen}, log)
	require.NoError(t, err)
	cardSvc, err := service.NewCardService(genSvc, st, log)
	require.NoError(t, err)

	return NewCardHandler(cardSvc, baseSettings(), log)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

const onePayload = `{"selectedNoteType":"BASIC","cards":[{"front":"Q","back":"A"}],"deck":"Default"}`

func TestGenerateCards(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{response: onePayload}, newStubStore())

	rec := postJSON(t, handler.GenerateCards, "/api/generate",
		GenerateRequest{Text: "Binary heaps support O(log n) insertion."})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BASIC", resp.SelectedNoteType)
	assert.Equal(t, "Default", resp.SuggestedDeck)
	assert.True(t, resp.DeckKnown)
	require.Len(t, resp.Cards, 1)
	assert.True(t, resp.Cards[0].Added)
	assert.Equal(t, "Basic", resp.Cards[0].Schema)
	assert.Equal(t, "A", resp.Cards[0].Fields["Back"])
}

func TestGenerateCardsDryRun(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{response: onePayload}, newStubStore())

	rec := postJSON(t, handler.GenerateCards, "/api/generate",
		GenerateRequest{Text: "some text", DryRun: true})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.DryRun)
	require.Len(t, resp.Cards, 1)
	assert.False(t, resp.Cards[0].Added)
	assert.NotEmpty(t, resp.Cards[0].Fields)
}

func TestGenerateCardsMalformedBody(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{response: onePayload}, newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.GenerateCards(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCardsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  GenerateRequest
	}{
		{"missing text", GenerateRequest{}},
		{"bad action", GenerateRequest{Text: "x", Action: "summarize"}},
		{"bad provider", GenerateRequest{Text: "x", Provider: "parrot"}},
		{"bad policy", GenerateRequest{Text: "x", NoteTypePolicy: "cloze_please"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := newTestHandler(t, &stubGenerator{response: onePayload}, newStubStore())
			rec := postJSON(t, handler.GenerateCards, "/api/generate", tc.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGenerateCardsProviderFailure(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{err: &generation.ProviderError{Backend: "openai", StatusCode: 500}}
	handler := newTestHandler(t, gen, newStubStore())

	rec := postJSON(t, handler.GenerateCards, "/api/generate",
		GenerateRequest{Text: "some text"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// The raw provider body never reaches the client.
	assert.NotContains(t, rec.Body.String(), "500")
	assert.Contains(t, rec.Body.String(), "provider failed")
}

func TestGenerateCardsStoreUnavailable(t *testing.T) {
	t.Parallel()

	st := newStubStore()
	st.listErr = store.ErrUnavailable
	handler := newTestHandler(t, &stubGenerator{response: onePayload}, st)

	rec := postJSON(t, handler.GenerateCards, "/api/generate",
		GenerateRequest{Text: "some text"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenerateCardsUnparseableModelOutput(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{response: "I cannot help with that."}, newStubStore())

	rec := postJSON(t, handler.GenerateCards, "/api/generate",
		GenerateRequest{Text: "some text"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be parsed")
}

func TestGenerateCardsMappingErrorCode(t *testing.T) {
	t.Parallel()

	st := newStubStore()
	st.schemas = []domain.NoteSchema{} // nothing to map onto
	handler := newTestHandler(t, &stubGenerator{response: onePayload}, st)

	rec := postJSON(t, handler.GenerateCards, "/api/generate",
		GenerateRequest{Text: "some text"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Cards, 1)
	assert.False(t, resp.Cards[0].Added)
	assert.Equal(t, "missing_schema", resp.Cards[0].ErrorCode)
	assert.NotEmpty(t, resp.Cards[0].Error)
}

func TestScoreCards(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: `{"scores":[{"score":9,"feedback":["crisp"]}]}`}
	handler := newTestHandler(t, gen, newStubStore())

	rec := postJSON(t, handler.ScoreCards, "/api/score",
		ScoreRequest{Cards: []domain.Card{{Front: "Q", Back: "A"}}})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 9, resp.Results[0].Score)
	assert.Equal(t, domain.GradeExcellent, resp.Results[0].Grade)
}

func TestScoreCardsRequiresCards(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{}, newStubStore())

	rec := postJSON(t, handler.ScoreCards, "/api/score", ScoreRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpoints(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{}, newStubStore())

	t.Run("schemas", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ListSchemas(rec, httptest.NewRequest(http.MethodGet, "/api/schemas", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SchemasResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Schemas, 2)
	})

	t.Run("decks", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ListDecks(rec, httptest.NewRequest(http.MethodGet, "/api/decks", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp DecksResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []domain.Deck{{ID: 1, Name: "Default"}}, resp.Decks)
	})

	t.Run("tags", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		handler.ListTags(rec, httptest.NewRequest(http.MethodGet, "/api/tags", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TagsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"go"}, resp.Tags)
	})
}

func TestGenerateCardsSettingsOverrides(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubGenerator{response: onePayload}, newStubStore())

	settings := handler.requestSettings(GenerateRequest{
		Text:              "x",
		Provider:          "openai",
		Model:             "gpt-4o",
		NoteTypePolicy:    "cloze_only",
		MaxClozeDeletions: 5,
		DryRun:            true,
	})

	assert.Equal(t, "gpt-4o", settings.Model)
	assert.Equal(t, domain.PolicyClozeOnly, settings.NoteTypePolicy)
	assert.Equal(t, 5, settings.MaxClozeDeletions)
	assert.True(t, settings.DryRun)

	// Untouched knobs keep their configured defaults.
	assert.Equal(t, 1024, settings.MaxTokens)
	assert.Equal(t, "Basic", settings.BasicModelName)
}
