// Package anthropic implements the generation.Generator interface for
// turn-separated-style backends: API-key plus version headers, the system
// instruction as a top-level field separate from the turn list, and a
// typed content-block response.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillcards/quill-api/internal/config"
	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/generation"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"

	// apiVersion is the dated protocol version the backend requires in
	// every request.
	apiVersion = "2023-06-01"

	defaultTimeout = 120 * time.Second
)

// Client calls a messages endpoint over plain HTTP. No SDK exists for
// this wire format in our stack, so the payload is assembled by hand.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client from the backend configuration. BaseURL overrides
// the default endpoint, which tests use to point at a local server.
func New(cfg config.AnthropicConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}, nil
}

// wireRequest is the messages-endpoint payload. The system message is a
// top-level string; Messages carries only user/assistant turns.
type wireRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system,omitempty"`
	Messages    []wireMessage `json:"messages"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// wireResponse unwraps the typed content blocks of a success response.
type wireResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate makes a single messages call. No retry, no streaming. A
// success response with no text block yields an empty string.
func (c *Client) Generate(
	ctx context.Context,
	messages []generation.Message,
	settings domain.GenerationSettings,
) (string, error) {
	system, turns := generation.SplitSystem(messages)

	req := wireRequest{
		Model:       settings.Model,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
		System:      system,
		Messages:    make([]wireMessage, 0, len(turns)),
	}
	for _, m := range turns {
		req.Messages = append(req.Messages, wireMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	c.logger.DebugContext(ctx, "calling turn-separated backend",
		"model", settings.Model,
		"turn_count", len(req.Messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &generation.ProviderError{Backend: "anthropic", Body: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &generation.ProviderError{Backend: "anthropic", Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &generation.ProviderError{
			Backend:    "anthropic",
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var parsed wireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &generation.ProviderError{
			Backend:    "anthropic",
			StatusCode: resp.StatusCode,
			Body:       "unparseable success response: " + err.Error(),
		}
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	c.logger.WarnContext(ctx, "response contained no text block",
		"model", settings.Model)
	return "", nil
}
