package insight

import (
	"context"
	"time"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/llm"
)

// MockProvider is an llm.Provider with canned behavior for tests and
// offline demos.
type MockProvider struct {
	response  string
	delay     time.Duration
	err       error
	available bool
}

// NewMockProvider creates an available mock that answers immediately.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response:  "Run against a staging environment first.",
		available: true,
	}
}

// WithResponse sets the reply text.
func (m *MockProvider) WithResponse(text string) *MockProvider {
	m.response = text
	return m
}

// WithDelay sets a simulated latency for testing timeout behavior.
func (m *MockProvider) WithDelay(delay time.Duration) *MockProvider {
	m.delay = delay
	return m
}

// WithError makes every Complete call fail.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// WithAvailable sets the Available result.
func (m *MockProvider) WithAvailable(available bool) *MockProvider {
	m.available = available
	return m
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string {
	return "mock"
}

// Available implements llm.Provider.
func (m *MockProvider) Available() bool {
	return m.available
}

// Complete implements llm.Provider. It honors ctx during the simulated
// delay.
func (m *MockProvider) Complete(ctx context.Context, _ llm.Prompt) (*llm.Completion, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Completion{Text: m.response, Model: "mock"}, nil
}
