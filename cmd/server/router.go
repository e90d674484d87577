package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quillcards/quill-api/internal/api"
	apiMiddleware "github.com/quillcards/quill-api/internal/api/middleware"
	"github.com/quillcards/quill-api/internal/api/shared"
)

// setupRouter configures the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	cardHandler := api.NewCardHandler(
		app.cardService,
		app.config.Generation.Settings(),
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", cardHandler.GenerateCards)
		r.Post("/score", cardHandler.ScoreCards)

		r.Get("/schemas", cardHandler.ListSchemas)
		r.Get("/decks", cardHandler.ListDecks)
		r.Get("/tags", cardHandler.ListTags)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
