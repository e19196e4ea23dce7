package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "DB_URL", "UPLOAD_DIR",
		"OLLAMA_BASE_URL", "OLLAMA_MODEL", "OLLAMA_TIMEOUT",
		"MISTRAL_API_KEY", "MISTRAL_MODEL",
		"USE_FALLBACK_ORCHESTRATION",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "./uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(20<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3.1", cfg.Ollama.Model)
	assert.Equal(t, 60*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "mistral-large-latest", cfg.Mistral.Model)
	assert.True(t, cfg.Analysis.UseFallback, "fallback orchestration is on by default")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OLLAMA_TEMPERATURE", "0.5")
	t.Setenv("MISTRAL_MAX_TOKENS", "500")
	t.Setenv("USE_FALLBACK_ORCHESTRATION", "false")
	t.Setenv("DB_MAX_CONNS", "7")

	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.InDelta(t, 0.5, cfg.Ollama.Temperature, 0.001)
	assert.Equal(t, 500, cfg.Mistral.MaxTokens)
	assert.False(t, cfg.Analysis.UseFallback)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
}

func TestLoadConfig_BadValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("OLLAMA_TIMEOUT", "soon")
	t.Setenv("USE_FALLBACK_ORCHESTRATION", "maybe")

	cfg := LoadConfig()
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 60*time.Second, cfg.Ollama.Timeout)
	assert.True(t, cfg.Analysis.UseFallback)
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{HTTPAddr: ":8080"},
		Database: DatabaseConfig{DSN: "postgres://localhost/docintake"},
		Upload:   UploadConfig{Dir: "./uploads"},
		Mistral:  MistralConfig{APIKey: "key"},
		Analysis: AnalysisConfig{UseFallback: true},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	t.Run("missing DSN", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.DSN = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	})

	t.Run("missing upload dir", func(t *testing.T) {
		cfg := validConfig()
		cfg.Upload.Dir = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	})

	t.Run("fallback without API key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mistral.APIKey = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	})

	t.Run("no API key needed when fallback is off", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mistral.APIKey = ""
		cfg.Analysis.UseFallback = false
		assert.NoError(t, cfg.Validate())
	})
}
