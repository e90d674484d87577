// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/quillcards/quill-api/internal/api/shared"
	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/service"
)

// CardHandler handles generation, scoring, and catalog requests.
type CardHandler struct {
	cardService  *service.CardService
	baseSettings domain.GenerationSettings
	logger       *slog.Logger
}

// NewCardHandler creates a CardHandler. The base settings come from
// configuration; requests may override a subset of them per call.
func NewCardHandler(
	cardService *service.CardService,
	baseSettings domain.GenerationSettings,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	if cardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card service cannot be nil for CardHandler")
	}

	return &CardHandler{
		cardService:  cardService,
		baseSettings: baseSettings,
		logger:       logger.With(slog.String("component", "card_handler")),
	}
}

// GenerateCards handles POST /api/generate requests. It runs the full
// pipeline and reports a per-card outcome for each generated card.
func (h *CardHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	action := domain.ActionGenerate
	if req.Action != "" {
		parsed, err := domain.ParseAction(req.Action)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		action = parsed
	}

	settings := h.requestSettings(req)
	input := service.GenerateInput{
		Action:    action,
		Text:      req.Text,
		Count:     req.Count,
		ConvertTo: req.ConvertTo,
		Deck:      req.Deck,
		Tags:      req.Tags,
	}

	output, err := h.cardService.Generate(r.Context(), input, settings)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := GenerateResponse{
		Category:         string(output.Category),
		SelectedNoteType: string(output.SelectedNoteType),
		Notes:            output.Notes,
		NeedsReview:      output.NeedsReview,
		SuggestedDeck:    output.SuggestedDeck,
		DeckKnown:        output.DeckKnown,
		DryRun:           settings.DryRun,
		Cards:            make([]CardResult, 0, len(output.Cards)),
	}
	for _, outcome := range output.Cards {
		resp.Cards = append(resp.Cards, newCardResult(outcome))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ScoreCards handles POST /api/score requests.
func (h *CardHandler) ScoreCards(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	settings := h.baseSettings
	if req.Provider != "" {
		settings.Provider = req.Provider
	}
	if req.Model != "" {
		settings.Model = req.Model
	}

	results, err := h.cardService.Score(r.Context(), req.Cards, settings)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ScoreResponse{Results: results})
}

// ListSchemas handles GET /api/schemas requests.
func (h *CardHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.cardService.ListSchemas(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SchemasResponse{Schemas: schemas})
}

// ListDecks handles GET /api/decks requests.
func (h *CardHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.cardService.ListDecks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DecksResponse{Decks: decks})
}

// ListTags handles GET /api/tags requests.
func (h *CardHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.cardService.ListTags(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TagsResponse{Tags: tags})
}

// requestSettings merges per-request overrides onto the configured
// defaults. Override values were already validated by the request tags.
func (h *CardHandler) requestSettings(req GenerateRequest) domain.GenerationSettings {
	settings := h.baseSettings
	settings.DryRun = req.DryRun
	if req.Provider != "" {
		settings.Provider = req.Provider
	}
	if req.Model != "" {
		settings.Model = req.Model
	}
	if req.NoteTypePolicy != "" {
		settings.NoteTypePolicy = domain.NoteTypePolicy(req.NoteTypePolicy)
	}
	if req.MaxClozeDeletions > 0 {
		settings.MaxClozeDeletions = req.MaxClozeDeletions
	}
	return settings
}
