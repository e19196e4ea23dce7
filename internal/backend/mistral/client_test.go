package mistral

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{}, testLogger())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestInvoke_SendsChatCompletion(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"sender": "ООО Ромашка"}`}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "mistral-large-latest"}, testLogger())
	require.NoError(t, err)

	out, err := c.Invoke(context.Background(), "промпт")
	require.NoError(t, err)
	assert.Equal(t, `{"sender": "ООО Ромашка"}`, out)

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "mistral-large-latest", got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
}

func TestInvoke_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "промпт")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestInvoke_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "промпт")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestInvoke_TruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// advertise more bytes than are sent, then drop the connection
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte(`{"choices": [`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "промпт")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read mistral response")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.mistral.ai", c.cfg.BaseURL)
	assert.Equal(t, "mistral-large-latest", c.cfg.Model)
	assert.Equal(t, 1000, c.cfg.MaxTokens)
	assert.Positive(t, c.cfg.Timeout)
}
