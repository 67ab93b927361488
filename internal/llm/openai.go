package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned by OpenAI.Complete without a configured key.
var ErrNoAPIKey = errors.New("openai api key not configured")

// OpenAI completes prompts against an OpenAI-compatible
// /chat/completions endpoint.
type OpenAI struct {
	cfg Config
	tr  transport
}

// NewOpenAI creates an OpenAI client. Zero fields of cfg take defaults.
func NewOpenAI(cfg *Config) *OpenAI {
	c := withDefaults(cfg, ProviderOpenAI)
	tr := newTransport(c)
	if c.APIKey != "" {
		tr.header.Set("Authorization", "Bearer "+c.APIKey)
	}
	return &OpenAI{cfg: c, tr: tr}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return ProviderOpenAI }

// Available reports whether an API key is configured.
func (o *OpenAI) Available() bool { return o.cfg.APIKey != "" }

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete implements Provider using the first returned choice.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	if !o.Available() {
		return nil, ErrNoAPIKey
	}

	var resp openAIResponse
	err := o.tr.postJSON(ctx, "/chat/completions", openAIRequest{
		Model:       p.model(o.cfg.Model),
		Messages:    p.messages(),
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &Completion{Text: resp.Choices[0].Message.Content, Model: resp.Model}, nil
}
