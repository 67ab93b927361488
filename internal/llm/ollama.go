package llm

import (
	"context"
	"fmt"
)

// Ollama completes prompts against an Ollama server's /api/chat. Requests
// are unstreamed.
type Ollama struct {
	cfg Config
	tr  transport
}

// NewOllama creates an Ollama client. Zero fields of cfg take defaults.
func NewOllama(cfg *Config) *Ollama {
	c := withDefaults(cfg, ProviderOllama)
	return &Ollama{cfg: c, tr: newTransport(c)}
}

// Name implements Provider.
func (o *Ollama) Name() string { return ProviderOllama }

// Available reports whether an endpoint is configured. Reachability is
// only learned by Complete.
func (o *Ollama) Available() bool { return o.cfg.Endpoint != "" }

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Model   string  `json:"model"`
	Message message `json:"message"`
}

// Complete implements Provider.
func (o *Ollama) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	var resp ollamaResponse
	err := o.tr.postJSON(ctx, "/api/chat", ollamaRequest{
		Model:    p.model(o.cfg.Model),
		Messages: p.messages(),
		Options: ollamaOptions{
			Temperature: o.cfg.Temperature,
			NumPredict:  o.cfg.MaxTokens,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" && resp.Message.Content == "" {
		return nil, fmt.Errorf("ollama returned an empty response")
	}
	return &Completion{Text: resp.Message.Content, Model: resp.Model}, nil
}
