// Package gemini implements the generation.Generator interface for
// parts-based backends through Google's genai SDK: the system instruction
// travels as a dedicated systemInstruction block and turns are lists of
// typed parts.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/quillcards/quill-api/internal/config"
	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
)

// Client calls a model-specific generate endpoint through the genai SDK.
type Client struct {
	client *genai.Client
	logger *slog.Logger
}

// New creates a Client from the backend configuration.
func New(ctx context.Context, cfg config.GeminiConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, logger: logger}, nil
}

// Generate makes a single generate-content call. No retry, no streaming.
// A success response with no candidates yields an empty string.
func (c *Client) Generate(
	ctx context.Context,
	messages []generation.Message,
	settings domain.GenerationSettings,
) (string, error) {
	system, turns := generation.SplitSystem(messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := "user"
		if m.Role == generation.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(settings.MaxTokens),
		Temperature:      genai.Ptr(float32(settings.Temperature)),
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	c.logger.DebugContext(ctx, "calling parts-based backend",
		"model", settings.Model,
		"turn_count", len(contents))

	resp, err := c.client.Models.GenerateContent(ctx, settings.Model, contents, genConfig)
	if err != nil {
		return "", providerError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		c.logger.WarnContext(ctx, "response contained no candidates",
			"model", settings.Model)
		return "", nil
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text, nil
}

// providerError converts SDK errors into the pipeline's provider error,
// preserving the upstream status code and body verbatim.
func providerError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &generation.ProviderError{
			Backend:    "gemini",
			StatusCode: apiErr.Code,
			Body:       apiErr.Message,
		}
	}
	return &generation.ProviderError{Backend: "gemini", Body: err.Error()}
}
