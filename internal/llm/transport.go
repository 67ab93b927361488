package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBodySize limits how much of an error response body is kept.
const MaxErrorBodySize = 64 * 1024

// StatusError is returned when a provider answers with a non-200 status.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Code, e.Body)
}

// transport posts JSON to one provider endpoint.
type transport struct {
	name     string
	endpoint string
	header   http.Header
	client   *http.Client
}

func newTransport(cfg Config) transport {
	return transport{
		name:     cfg.Name,
		endpoint: cfg.Endpoint,
		header:   make(http.Header),
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// postJSON sends in to endpoint+path and decodes the 200 reply into out.
func (t transport) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", t.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", t.name, err)
	}
	for k, v := range t.header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", t.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		return &StatusError{Provider: t.name, Code: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", t.name, err)
	}
	return nil
}
