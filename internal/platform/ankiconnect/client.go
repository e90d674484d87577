// Package ankiconnect implements store.CardStore against the AnkiConnect
// JSON-RPC endpoint exposed by a running Anki instance.
package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/quillcards/quill-api/internal/config"
	"github.com/quillcards/quill-api/internal/domain"
	"github.com/quillcards/quill-api/internal/store"
)

const protocolVersion = 6

// Client talks to AnkiConnect over HTTP. Read operations retry with
// exponential backoff; AddCard is a single shot because the underlying
// action is not idempotent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

var _ store.CardStore = (*Client)(nil)

// New creates a Client from the store configuration.
func New(cfg config.AnkiConfig, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("store URL cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxRetries: uint64(cfg.MaxRetries),
		logger:     logger.With("component", "ankiconnect"),
	}, nil
}

type rpcRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke performs a single JSON-RPC round trip. Transport failures map to
// store.ErrUnavailable, application errors to store.ErrRejected.
func (c *Client) invoke(ctx context.Context, action string, params any, result any) error {
	body, err := json.Marshal(rpcRequest{Action: action, Version: protocolVersion, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, action, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, action, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned status %d", store.ErrUnavailable, action, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%w: %s returned malformed envelope: %v", store.ErrUnavailable, action, err)
	}
	if envelope.Error != nil && *envelope.Error != "" {
		return fmt.Errorf("%w: %s: %s", store.ErrRejected, action, *envelope.Error)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%w: %s returned unexpected result shape: %v", store.ErrUnavailable, action, err)
		}
	}
	return nil
}

// invokeWithRetry wraps invoke with exponential backoff for idempotent
// reads. Rejections are final; only availability errors retry.
func (c *Client) invokeWithRetry(ctx context.Context, action string, params any, result any) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.invoke(ctx, action, params, result)
		if err != nil && errors.Is(err, store.ErrUnavailable) {
			c.logger.WarnContext(ctx, "store read failed, will retry", "action", action, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// wireModel is the subset of AnkiConnect's model object the mapper needs.
type wireModel struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	Flds []struct {
		Name string `json:"name"`
		Ord  int    `json:"ord"`
	} `json:"flds"`
}

// ListSchemas fetches every note schema with its ordered field list.
func (c *Client) ListSchemas(ctx context.Context) ([]domain.NoteSchema, error) {
	var names []string
	if err := c.invokeWithRetry(ctx, "modelNames", nil, &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []domain.NoteSchema{}, nil
	}

	var models []wireModel
	params := map[string]any{"modelNames": names}
	if err := c.invokeWithRetry(ctx, "findModelsByName", params, &models); err != nil {
		return nil, err
	}

	schemas := make([]domain.NoteSchema, 0, len(models))
	for _, model := range models {
		sort.Slice(model.Flds, func(i, j int) bool {
			return model.Flds[i].Ord < model.Flds[j].Ord
		})
		fields := make([]string, 0, len(model.Flds))
		for _, fld := range model.Flds {
			fields = append(fields, fld.Name)
		}

		kind := domain.SchemaKindStandard
		if model.Type == 1 {
			kind = domain.SchemaKindCloze
		}

		schemas = append(schemas, domain.NoteSchema{
			Name:   model.Name,
			Kind:   kind,
			Fields: fields,
		})
	}
	return schemas, nil
}

// ListDecks fetches deck names with their IDs, sorted by name.
func (c *Client) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	var byName map[string]int64
	if err := c.invokeWithRetry(ctx, "deckNamesAndIds", nil, &byName); err != nil {
		return nil, err
	}

	decks := make([]domain.Deck, 0, len(byName))
	for name, id := range byName {
		decks = append(decks, domain.Deck{ID: id, Name: name})
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	return decks, nil
}

// ListTags fetches the tags known to the store.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.invokeWithRetry(ctx, "getTags", nil, &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// AddCard appends a note. No retry: the action assigns a new note ID on
// every success, so a retried timeout could create a duplicate.
func (c *Client) AddCard(
	ctx context.Context,
	schemaName string,
	fields map[string]string,
	deckName string,
	tags []string,
) (int64, error) {
	if tags == nil {
		tags = []string{}
	}
	params := map[string]any{
		"note": map[string]any{
			"deckName":  deckName,
			"modelName": schemaName,
			"fields":    fields,
			"tags":      tags,
			"options": map[string]any{
				"allowDuplicate": false,
			},
		},
	}

	var noteID int64
	if err := c.invoke(ctx, "addNote", params, &noteID); err != nil {
		return 0, err
	}

	c.logger.InfoContext(ctx, "added note to store",
		"note_id", noteID,
		"schema", schemaName,
		"deck", deckName)
	return noteID, nil
}
