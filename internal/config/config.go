// Package config defines and loads the application configuration.
package config

import "github.com/quillcards/quill-api/internal/domain"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Anki       AnkiConfig       `mapstructure:"anki"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// GenerationConfig contains the default generation settings. Individual
// requests may override most of them.
type GenerationConfig struct {
	Provider          string  `mapstructure:"provider"            validate:"required,oneof=openai anthropic gemini"`
	Model             string  `mapstructure:"model"               validate:"required"`
	MaxTokens         int     `mapstructure:"max_tokens"          validate:"required,gt=0"`
	Temperature       float64 `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	NoteTypePolicy    string  `mapstructure:"note_type_policy"    validate:"required,oneof=auto prefer_basic prefer_cloze basic_only cloze_only"`
	MaxClozeDeletions int     `mapstructure:"max_cloze_deletions" validate:"required,gt=0"`
	BasicModelName    string  `mapstructure:"basic_model_name"    validate:"required"`
	ClozeModelName    string  `mapstructure:"cloze_model_name"    validate:"required"`
}

// Settings converts the configured defaults into per-call generation
// settings.
func (g GenerationConfig) Settings() domain.GenerationSettings {
	return domain.GenerationSettings{
		Provider:          g.Provider,
		Model:             g.Model,
		MaxTokens:         g.MaxTokens,
		Temperature:       g.Temperature,
		NoteTypePolicy:    domain.NoteTypePolicy(g.NoteTypePolicy),
		MaxClozeDeletions: g.MaxClozeDeletions,
		BasicModelName:    g.BasicModelName,
		ClozeModelName:    g.ClozeModelName,
	}
}

// ProvidersConfig groups the per-backend credentials. A backend with no
// API key is simply not registered at startup.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

// OpenAIConfig configures the chat-completion-style backend.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// AnthropicConfig configures the turn-separated-style backend.
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// GeminiConfig configures the parts-based-style backend.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AnkiConfig configures the external flashcard store client.
type AnkiConfig struct {
	URL            string `mapstructure:"url"             validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int    `mapstructure:"max_retries"     validate:"gte=0"`
}
