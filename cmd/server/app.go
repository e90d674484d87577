package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quillcards/quill-api/internal/config"
	"github.com/quillcards/quill-api/internal/generation"
	"github.com/quillcards/quill-api/internal/platform/ankiconnect"
	"github.com/quillcards/quill-api/internal/platform/anthropic"
	"github.com/quillcards/quill-api/internal/platform/gemini"
	"github.com/quillcards/quill-api/internal/platform/openai"
	"github.com/quillcards/quill-api/internal/service"
	"github.com/quillcards/quill-api/internal/store"
)

// application holds the wired dependencies for one server process.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	cardStore   store.CardStore
	cardService *service.CardService
}

// newApplication builds the dependency graph: one provider adapter per
// configured API key, the flashcard store client, and the pipeline
// service on top of both.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	providers, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, ok := providers[cfg.Generation.Provider]; !ok {
		return nil, fmt.Errorf(
			"default provider %q has no API key configured", cfg.Generation.Provider)
	}

	genService, err := generation.NewService(providers, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	cardStore, err := ankiconnect.New(cfg.Anki, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store client: %w", err)
	}

	cardService, err := service.NewCardService(genService, cardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	logger.Info("application initialized",
		"providers", providerNames(providers),
		"default_provider", cfg.Generation.Provider,
		"store_url", cfg.Anki.URL)

	return &application{
		config:      cfg,
		logger:      logger,
		cardStore:   cardStore,
		cardService: cardService,
	}, nil
}

// buildProviders creates one adapter per backend whose API key is set.
func buildProviders(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (map[string]generation.Generator, error) {
	providers := make(map[string]generation.Generator)

	if cfg.Providers.OpenAI.APIKey != "" {
		client, err := openai.New(cfg.Providers.OpenAI, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		providers["openai"] = client
	}

	if cfg.Providers.Anthropic.APIKey != "" {
		client, err := anthropic.New(cfg.Providers.Anthropic, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		providers["anthropic"] = client
	}

	if cfg.Providers.Gemini.APIKey != "" {
		client, err := gemini.New(ctx, cfg.Providers.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini adapter: %w", err)
		}
		providers["gemini"] = client
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no provider API keys configured; set at least one")
	}
	return providers, nil
}

func providerNames(providers map[string]generation.Generator) []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
