package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Check payments first."}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	provider := NewOpenAI(&Config{Endpoint: server.URL, APIKey: "sk-test"})
	require.True(t, provider.Available())

	c, err := provider.Complete(context.Background(), Prompt{System: "be brief", User: "run chaos test on orders"})

	require.NoError(t, err)
	assert.Equal(t, &Completion{Text: "Check payments first.", Model: "gpt-4o-mini"}, c)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.Equal(t, []message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "run chaos test on orders"},
	}, got.Messages)
}

func TestOpenAIComplete_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		provider := NewOpenAI(&Config{Endpoint: "http://127.0.0.1:1"})
		assert.False(t, provider.Available())

		_, err := provider.Complete(context.Background(), Prompt{User: "hi"})
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"model": "m", "choices": []}`))
		}))
		defer server.Close()

		provider := NewOpenAI(&Config{Endpoint: server.URL, APIKey: "k"})
		_, err := provider.Complete(context.Background(), Prompt{User: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})

	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		provider := NewOpenAI(&Config{Endpoint: server.URL, APIKey: "k"})
		_, err := provider.Complete(context.Background(), Prompt{User: "hi"})

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ProviderOpenAI, se.Provider)
		assert.Equal(t, http.StatusTooManyRequests, se.Code)
		assert.Equal(t, "rate limited", se.Body)
		assert.Contains(t, err.Error(), "status 429")
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
		wantErr  bool
	}{
		{"ollama", &Config{Name: ProviderOllama}, ProviderOllama, false},
		{"openai", &Config{Name: ProviderOpenAI, APIKey: "k"}, ProviderOpenAI, false},
		{"unknown", &Config{Name: "gemini"}, "", true},
		{"nil", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Name())
			assert.True(t, p.Available())
		})
	}
}

func TestWithDefaults(t *testing.T) {
	in := &Config{Name: "ignored", Model: "mistral"}
	got := withDefaults(in, ProviderOllama)

	assert.Equal(t, ProviderOllama, got.Name)
	assert.Equal(t, "http://127.0.0.1:11434", got.Endpoint)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, DefaultTimeout, got.Timeout)
	assert.Equal(t, "ignored", in.Name, "input must not be modified")

	assert.Equal(t, *DefaultConfig(ProviderOpenAI), withDefaults(nil, ProviderOpenAI))
}

func TestPrompt_ModelOverride(t *testing.T) {
	assert.Equal(t, "llama3", Prompt{}.model("llama3"))
	assert.Equal(t, "phi3", Prompt{Model: "phi3"}.model("llama3"))
	assert.Equal(t, []message{{Role: "user", Content: "hi"}}, Prompt{User: "hi"}.messages())
}
