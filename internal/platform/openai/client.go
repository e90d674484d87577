// Package openai implements the generation.Generator interface for
// chat-completion-style backends: bearer-token auth, a single messages
// array with the system turn inline, and a JSON response_format hint.
package openai

import (
	"context"
	"errors"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/quillcards/quill-api/internal/config"
	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
)

// Client calls a chat-completions endpoint through the go-openai SDK.
type Client struct {
	client *goopenai.Client
	logger *slog.Logger
}

// New creates a Client from the backend configuration. BaseURL overrides
// the default endpoint, which tests use to point at a local server.
func New(cfg config.OpenAIConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: goopenai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// Generate makes a single chat-completion call. No retry, no streaming.
// An empty choices array yields an empty string; callers treat that as
// "nothing produced" and fail at the parsing stage.
func (c *Client) Generate(
	ctx context.Context,
	messages []generation.Message,
	settings domain.GenerationSettings,
) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    wireRole(m.Role),
			Content: m.Content,
		})
	}

	req := goopenai.ChatCompletionRequest{
		Model:       settings.Model,
		Messages:    msgs,
		MaxTokens:   settings.MaxTokens,
		Temperature: float32(settings.Temperature),
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	c.logger.DebugContext(ctx, "calling chat-completion backend",
		"model", settings.Model,
		"message_count", len(msgs))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", providerError(err)
	}

	if len(resp.Choices) == 0 {
		c.logger.WarnContext(ctx, "chat-completion response had no choices",
			"model", settings.Model)
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

func wireRole(role generation.Role) string {
	switch role {
	case generation.RoleSystem:
		return goopenai.ChatMessageRoleSystem
	case generation.RoleAssistant:
		return goopenai.ChatMessageRoleAssistant
	default:
		return goopenai.ChatMessageRoleUser
	}
}

// providerError converts SDK errors into the pipeline's provider error,
// preserving the upstream status code and body verbatim.
func providerError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &generation.ProviderError{
			Backend:    "openai",
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
		}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &generation.ProviderError{
			Backend:    "openai",
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
		}
	}

	return &generation.ProviderError{Backend: "openai", Body: err.Error()}
}
