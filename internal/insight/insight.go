// Package insight asks an LLM for one line of supplementary commentary on
// an interpreted command. It runs out of band: a Task is time-boxed, owns
// its result, and never influences the interpreted action.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/llm"
)

// DefaultTimeout bounds a single insight request.
const DefaultTimeout = 5 * time.Second

var (
	// ErrUnavailable is returned when the provider is not configured.
	ErrUnavailable = errors.New("insight provider unavailable")

	// ErrEmpty is returned when the provider answers with no text.
	ErrEmpty = errors.New("insight provider returned no text")
)

// Mode selects when insight is requested.
type Mode string

const (
	ModeOff           Mode = "off"
	ModeAlways        Mode = "always"
	ModeLowConfidence Mode = "low_confidence"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOff, ModeAlways, ModeLowConfidence:
		return m, nil
	case "":
		return ModeOff, nil
	default:
		return "", fmt.Errorf("unknown insight mode %q", s)
	}
}

// Applies reports whether an interpretation with the given confidence
// gate should get insight.
func (m Mode) Applies(confident bool) bool {
	switch m {
	case ModeAlways:
		return true
	case ModeLowConfidence:
		return !confident
	default:
		return false
	}
}

// Request describes the interpreted command.
type Request struct {
	Input       string
	Intent      string
	ActionType  string
	TestType    string
	ServiceName string
	Risk        string
	Duration    string
	Confidence  float64
	Suggestions []string
}

// Result is the outcome of one insight task.
type Result struct {
	Text     string        `json:"text,omitempty"`
	Provider string        `json:"provider"`
	Model    string        `json:"model,omitempty"`
	Latency  time.Duration `json:"latency"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

const systemPrompt = "You review test execution requests for a microservice test lab. " +
	"Answer with one concise, actionable insight in at most two sentences."

var promptTemplate = template.Must(template.New("insight").Parse(`Analyze this test execution request and provide one key insight.

Command: {{.Input}}
Intent: {{.Intent}}
Action: {{.ActionType}} ({{.TestType}}) on {{.ServiceName}}
Risk level: {{.Risk}}
Estimated duration: {{.Duration}}
Confidence: {{printf "%.2f" .Confidence}}
{{- if .Suggestions}}
Known advice:
{{- range .Suggestions}}
- {{.}}
{{- end}}
{{- end}}
`))

// Prompt renders the user message sent to the provider.
func Prompt(req Request) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, req); err != nil {
		return "", fmt.Errorf("render insight prompt: %w", err)
	}
	return b.String(), nil
}

// Service issues insight requests against one provider.
type Service struct {
	provider llm.Provider
	timeout  time.Duration
	model    string
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-request time box.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// NewService creates a Service over provider.
func NewService(provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeout returns the per-request time box.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// Task is one in-flight insight request.
type Task struct {
	done   chan struct{}
	result Result
}

// Start launches an insight request in its own goroutine. The request is
// cancelled when ctx is done or the service timeout elapses, so the
// goroutine always exits.
func (s *Service) Start(ctx context.Context, req Request) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		tctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		t.result = s.run(tctx, req)
	}()
	return t
}

// Done is closed when the task has a result.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) Result {
	select {
	case <-t.done:
		return t.result
	case <-ctx.Done():
		return Result{Err: ctx.Err(), Error: ctx.Err().Error()}
	}
}

func (s *Service) run(ctx context.Context, req Request) Result {
	start := time.Now()
	res := Result{Provider: s.providerName()}

	fail := func(err error) Result {
		res.Err = err
		res.Error = err.Error()
		res.Latency = time.Since(start)
		log.Warn().Err(err).Str("provider", res.Provider).Msg("insight failed")
		return res
	}

	if s.provider == nil || !s.provider.Available() {
		return fail(ErrUnavailable)
	}

	prompt, err := Prompt(req)
	if err != nil {
		return fail(err)
	}

	resp, err := s.provider.Complete(ctx, llm.Prompt{
		Model:  s.model,
		System: systemPrompt,
		User:   prompt,
	})
	if err != nil {
		return fail(fmt.Errorf("insight completion: %w", err))
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return fail(ErrEmpty)
	}

	res.Text = text
	res.Model = resp.Model
	res.Latency = time.Since(start)

	log.Debug().
		Str("provider", res.Provider).
		Dur("latency", res.Latency).
		Msg("insight received")

	return res
}

func (s *Service) providerName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}
