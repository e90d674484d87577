package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcards/quill-api/internal/domain"
)

// TestLoadDefaults verifies the zero-config posture: no environment, no
// config file, everything defaulted and valid.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, "Basic", cfg.Generation.BasicModelName)
	assert.Equal(t, "Cloze", cfg.Generation.ClozeModelName)
	assert.Equal(t, 3, cfg.Generation.MaxClozeDeletions)
	assert.Equal(t, "http://127.0.0.1:8765", cfg.Anki.URL)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("QUILL_SERVER_PORT", "9999")
	t.Setenv("QUILL_SERVER_LOG_LEVEL", "debug")
	t.Setenv("QUILL_GENERATION_PROVIDER", "anthropic")
	t.Setenv("QUILL_GENERATION_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("QUILL_PROVIDERS_ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "anthropic", cfg.Generation.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Generation.Model)
	assert.Equal(t, "test-key", cfg.Providers.Anthropic.APIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad port", key: "QUILL_SERVER_PORT", value: "70000"},
		{name: "bad log level", key: "QUILL_SERVER_LOG_LEVEL", value: "verbose"},
		{name: "unknown provider", key: "QUILL_GENERATION_PROVIDER", value: "parrot"},
		{name: "bad policy", key: "QUILL_GENERATION_NOTE_TYPE_POLICY", value: "whatever"},
		{name: "bad anki url", key: "QUILL_ANKI_URL", value: "not a url"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestGenerationSettingsFromConfig(t *testing.T) {
	cfg := GenerationConfig{
		Provider:          "gemini",
		Model:             "gemini-2.0-flash",
		MaxTokens:         2048,
		Temperature:       0.4,
		NoteTypePolicy:    "prefer_cloze",
		MaxClozeDeletions: 2,
		BasicModelName:    "My Basic",
		ClozeModelName:    "My Cloze",
	}

	settings := cfg.Settings()

	assert.Equal(t, "gemini", settings.Provider)
	assert.Equal(t, domain.PolicyPreferCloze, settings.NoteTypePolicy)
	assert.Equal(t, "My Basic", settings.BasicModelName)
	require.NoError(t, settings.Validate())
}
