// Package llm provides the completion clients behind out-of-band insight:
// a local Ollama server or any OpenAI-compatible endpoint. Insight asks one
// question per command, so the clients expose a single-turn Complete call
// instead of a conversation API.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider names.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Default request bounds. Insight replies are one or two sentences.
const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.3
	DefaultTimeout     = 30 * time.Second
)

// Provider completes a single-turn prompt.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)
	Name() string
	// Available reports whether the provider is configured. It never
	// performs I/O.
	Available() bool
}

// Prompt is one system instruction plus one user message.
type Prompt struct {
	// Model overrides the configured model when set.
	Model  string
	System string
	User   string
}

// Completion is the reply text and the model that produced it.
type Completion struct {
	Text  string
	Model string
}

// Config configures a provider.
type Config struct {
	// Name is ProviderOllama or ProviderOpenAI.
	Name        string
	Endpoint    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the defaults for a provider name.
func DefaultConfig(name string) *Config {
	cfg := &Config{
		Name:        name,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
	switch name {
	case ProviderOllama:
		cfg.Endpoint = "http://127.0.0.1:11434"
		cfg.Model = "llama3"
	case ProviderOpenAI:
		cfg.Endpoint = "https://api.openai.com/v1"
		cfg.Model = "gpt-4o-mini"
	}
	return cfg
}

// withDefaults fills the zero fields of cfg from DefaultConfig(name). cfg
// is copied, never modified.
func withDefaults(cfg *Config, name string) Config {
	d := DefaultConfig(name)
	if cfg == nil {
		return *d
	}
	out := *cfg
	out.Name = name
	if out.Endpoint == "" {
		out.Endpoint = d.Endpoint
	}
	if out.Model == "" {
		out.Model = d.Model
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = d.MaxTokens
	}
	if out.Temperature == 0 {
		out.Temperature = d.Temperature
	}
	if out.Timeout == 0 {
		out.Timeout = d.Timeout
	}
	return out
}

// New creates the provider named by cfg.Name.
func New(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}
	switch cfg.Name {
	case ProviderOllama:
		return NewOllama(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

// message is the chat message shape shared by both wire protocols.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p Prompt) messages() []message {
	var out []message
	if p.System != "" {
		out = append(out, message{Role: "system", Content: p.System})
	}
	return append(out, message{Role: "user", Content: p.User})
}

func (p Prompt) model(fallback string) string {
	if p.Model != "" {
		return p.Model
	}
	return fallback
}
