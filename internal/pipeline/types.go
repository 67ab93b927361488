package pipeline

import (
	"errors"
	"time"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/enrich"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/insight"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/mapper"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/nlp"
)

// Interpretation is the full trace of one command: every intermediate
// stage output plus the final action.
type Interpretation struct {
	ID            string                  `json:"id"`
	Input         string                  `json:"input"`
	Normalized    string                  `json:"normalized"`
	Tokens        []nlp.Token             `json:"tokens"`
	SpecialTokens []string                `json:"special_tokens,omitempty"`
	Entities      nlp.EntitySet           `json:"entities"`
	Intent        nlp.ClassifiedIntent    `json:"intent"`
	Enrichment    enrich.Result           `json:"enrichment"`
	Action        mapper.ExecutableAction `json:"action"`

	// Confident is true when the action confidence reaches the configured
	// threshold.
	Confident bool `json:"confident"`

	// Failures are the messages of recovered stage errors, in stage order.
	Failures []string `json:"failures,omitempty"`
	Errors   []error  `json:"-"`

	Insight   *insight.Result `json:"insight,omitempty"`
	Duration  time.Duration   `json:"duration"`
	CreatedAt time.Time       `json:"created_at"`
}

// Err joins every recovered stage error, or returns nil.
func (i *Interpretation) Err() error {
	return errors.Join(i.Errors...)
}

// Fallback reports whether the action is the UNKNOWN or ERROR fallback.
func (i *Interpretation) Fallback() bool {
	return i.Action.ActionType == mapper.ActionUnknown || i.Action.ActionType == mapper.ActionError
}

func (i *Interpretation) fail(err error) {
	i.Errors = append(i.Errors, err)
	i.Failures = append(i.Failures, err.Error())
}

// Stats tracks interpretation statistics for monitoring and tuning.
type Stats struct {
	// TotalRequests is the number of interpreted commands.
	TotalRequests int64 `json:"total_requests"`

	// UnknownCount is the number of UNKNOWN actions.
	UnknownCount int64 `json:"unknown_count"`

	// ErrorCount is the number of ERROR actions.
	ErrorCount int64 `json:"error_count"`

	// FailureCount is the number of interpretations with any recovered failure.
	FailureCount int64 `json:"failure_count"`

	// ConfidentCount is the number of interpretations that passed the threshold.
	ConfidentCount int64 `json:"confident_count"`

	InsightRequests int64 `json:"insight_requests"`
	InsightFailures int64 `json:"insight_failures"`

	// AverageConfidence is the running average action confidence.
	AverageConfidence float64 `json:"average_confidence"`

	// IntentDistribution tracks how often each intent is classified.
	IntentDistribution map[nlp.IntentType]int64 `json:"intent_distribution"`
}

// ConfidentRatio returns the percentage of confident interpretations.
func (s *Stats) ConfidentRatio() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.ConfidentCount) / float64(s.TotalRequests) * 100
}
