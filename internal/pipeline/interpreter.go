// Package pipeline wires the interpretation stages together: normalize,
// extract, classify, enrich and map. Every stage failure is recovered and
// recorded so Interpret always returns a well-formed action.
package pipeline

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/enrich"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/insight"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/logging"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/mapper"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/nlp"
)

const (
	// DefaultConfidenceThreshold is the minimum action confidence for an
	// interpretation to count as confident.
	DefaultConfidenceThreshold = 0.7

	// DefaultConcurrency bounds InterpretBatch.
	DefaultConcurrency = 4

	// DefaultRecordTimeout bounds one history write.
	DefaultRecordTimeout = 2 * time.Second
)

// Insighter starts an out-of-band insight task.
type Insighter interface {
	Start(ctx context.Context, req insight.Request) *insight.Task
}

// Recorder persists finished interpretations.
type Recorder interface {
	Record(ctx context.Context, interp *Interpretation) error
}

type settings struct {
	fuzzyThreshold float64
	threshold      float64
	maxPatterns    int
	rules          []nlp.IntentRule
	templates      map[nlp.IntentType][]mapper.Template
	concurrency    int
	insighter      Insighter
	insightMode    insight.Mode
	recorder       Recorder
	recordTimeout  time.Duration
}

// Option configures an Interpreter.
type Option func(*settings)

// WithFuzzyThreshold sets the similarity threshold for fuzzy entity matches.
func WithFuzzyThreshold(t float64) Option {
	return func(s *settings) { s.fuzzyThreshold = t }
}

// WithConfidenceThreshold sets the threshold for Interpretation.Confident.
func WithConfidenceThreshold(t float64) Option {
	return func(s *settings) { s.threshold = t }
}

// WithMaxPatterns caps the compiled intent patterns.
func WithMaxPatterns(n int) Option {
	return func(s *settings) { s.maxPatterns = n }
}

// WithRules replaces the intent rules.
func WithRules(rules []nlp.IntentRule) Option {
	return func(s *settings) { s.rules = rules }
}

// WithTemplates replaces the action templates.
func WithTemplates(templates map[nlp.IntentType][]mapper.Template) Option {
	return func(s *settings) { s.templates = templates }
}

// WithConcurrency bounds the number of commands InterpretBatch handles at once.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithInsight enables the insight step for the given mode.
func WithInsight(i Insighter, mode insight.Mode) Option {
	return func(s *settings) {
		s.insighter = i
		s.insightMode = mode
	}
}

// WithRecorder persists every interpretation.
func WithRecorder(r Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithRecordTimeout bounds one recorder call.
func WithRecordTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.recordTimeout = d
		}
	}
}

// Interpreter turns command text into an ExecutableAction. The stages are
// immutable after construction so one Interpreter serves any number of
// goroutines.
type Interpreter struct {
	extractor  *nlp.Extractor
	classifier *nlp.Classifier
	enricher   *enrich.Enricher
	mapper     *mapper.Mapper

	threshold     float64
	concurrency   int
	insighter     Insighter
	insightMode   insight.Mode
	recorder      Recorder
	recordTimeout time.Duration

	stats Stats
	mu    sync.RWMutex
}

// New builds an Interpreter. It fails only when the intent rules do not
// compile.
func New(opts ...Option) (*Interpreter, error) {
	s := settings{
		threshold:     DefaultConfidenceThreshold,
		concurrency:   DefaultConcurrency,
		insightMode:   insight.ModeOff,
		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}

	var xopts []nlp.ExtractorOption
	if s.fuzzyThreshold > 0 {
		xopts = append(xopts, nlp.WithFuzzyThreshold(s.fuzzyThreshold))
	}
	var copts []nlp.ClassifierOption
	if s.rules != nil {
		copts = append(copts, nlp.WithRules(s.rules))
	}
	if s.maxPatterns > 0 {
		copts = append(copts, nlp.WithMaxPatterns(s.maxPatterns))
	}
	classifier, err := nlp.NewClassifier(copts...)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	var mopts []mapper.Option
	if s.templates != nil {
		mopts = append(mopts, mapper.WithTemplates(s.templates))
	}

	return &Interpreter{
		extractor:     nlp.NewExtractor(xopts...),
		classifier:    classifier,
		enricher:      enrich.New(),
		mapper:        mapper.New(mopts...),
		threshold:     s.threshold,
		concurrency:   s.concurrency,
		insighter:     s.insighter,
		insightMode:   s.insightMode,
		recorder:      s.recorder,
		recordTimeout: s.recordTimeout,
		stats: Stats{
			IntentDistribution: make(map[nlp.IntentType]int64),
		},
	}, nil
}

// Threshold returns the confidence threshold.
func (p *Interpreter) Threshold() float64 {
	return p.threshold
}

// Interpret runs every stage on input. The returned action is always
// well-formed; recovered failures are listed on the Interpretation.
func (p *Interpreter) Interpret(ctx context.Context, input string) *Interpretation {
	start := time.Now()
	interp := &Interpretation{
		ID:        uuid.NewString(),
		Input:     input,
		CreatedAt: start.UTC(),
	}

	in := nlp.Input{Original: input, Tokens: []nlp.Token{}}
	if err := safely(StageNormalize, ErrParse, func() error {
		in = nlp.Normalize(input)
		return nil
	}); err != nil {
		interp.fail(err)
	}
	interp.Normalized = in.Normalized
	interp.Tokens = in.Tokens
	interp.SpecialTokens = in.SpecialTokens()

	entities := nlp.EntitySet{}
	if err := safely(StageExtract, ErrParse, func() error {
		entities = p.extractor.Extract(in)
		return nil
	}); err != nil {
		interp.fail(err)
	}
	interp.Entities = entities

	intent := nlp.Unknown()
	if err := safely(StageClassify, ErrClassification, func() error {
		c := p.classifier.Classify(in, entities)
		intent = c
		if c.Type == nlp.IntentUnknown {
			return errNoIntent
		}
		return nil
	}); err != nil {
		interp.fail(err)
	}
	interp.Intent = intent

	var enriched enrich.Result
	if err := safely(StageContext, ErrContext, func() error {
		enriched = p.enricher.Enrich(intent, entities)
		return nil
	}); err != nil {
		interp.fail(err)
		enriched = enrich.Fallback(intent, entities)
	}
	interp.Enrichment = enriched

	var action mapper.ExecutableAction
	if err := safely(StageMap, ErrMapping, func() error {
		a, merr := p.mapper.Map(intent, entities, enriched)
		action = a
		return merr
	}); err != nil {
		interp.fail(err)
		if action.ActionType == "" {
			action = mapper.ErrorAction(err.Error())
		}
	}
	interp.Action = action
	interp.Confident = action.Confidence >= p.threshold

	log.Debug().
		Str("id", interp.ID).
		Str("intent", string(intent.Type)).
		Str("action", action.ActionType).
		Str("service", action.ServiceName).
		Float64("confidence", action.Confidence).
		Int("failures", len(interp.Errors)).
		Msg("Command interpreted")

	insightRequested := p.insighter != nil && p.insightMode.Applies(interp.Confident) && !interp.Fallback()
	if insightRequested {
		res := p.insighter.Start(ctx, insightRequest(interp)).Wait(ctx)
		interp.Insight = &res
		if res.Err != nil {
			interp.fail(newStageError(StageInsight, ErrEnrichment, res.Err))
		}
	}

	interp.Duration = time.Since(start)
	p.record(interp, insightRequested)

	if p.recorder != nil {
		rctx, cancel := logging.DetachContextWithTimeout(ctx, p.recordTimeout)
		if err := p.recorder.Record(rctx, interp); err != nil {
			log.Warn().Err(err).Str("id", interp.ID).Msg("Failed to record interpretation")
		}
		cancel()
	}

	return interp
}

// InterpretBatch interprets inputs concurrently and returns results in
// input order. It stops scheduling new commands once ctx is done; entries
// that were never interpreted are nil.
func (p *Interpreter) InterpretBatch(ctx context.Context, inputs []string) ([]*Interpretation, error) {
	results := make([]*Interpretation, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Interpret(gctx, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("interpret batch: %w", err)
	}
	return results, nil
}

func insightRequest(interp *Interpretation) insight.Request {
	return insight.Request{
		Input:       interp.Input,
		Intent:      string(interp.Intent.Type),
		ActionType:  interp.Action.ActionType,
		TestType:    interp.Action.TestType,
		ServiceName: interp.Action.ServiceName,
		Risk:        interp.Enrichment.Context.Risk.String(),
		Duration:    interp.Action.EstimatedDuration,
		Confidence:  interp.Action.Confidence,
		Suggestions: interp.Enrichment.Suggestions,
	}
}

func (p *Interpreter) record(interp *Interpretation, insightRequested bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.TotalRequests++
	switch interp.Action.ActionType {
	case mapper.ActionUnknown:
		p.stats.UnknownCount++
	case mapper.ActionError:
		p.stats.ErrorCount++
	}
	if len(interp.Errors) > 0 {
		p.stats.FailureCount++
	}
	if interp.Confident {
		p.stats.ConfidentCount++
	}
	if insightRequested {
		p.stats.InsightRequests++
		if interp.Insight != nil && interp.Insight.Err != nil {
			p.stats.InsightFailures++
		}
	}
	p.stats.IntentDistribution[interp.Intent.Type]++

	total := float64(p.stats.TotalRequests)
	p.stats.AverageConfidence = (p.stats.AverageConfidence*(total-1) + interp.Action.Confidence) / total
}

// Stats returns a copy of the current statistics.
func (p *Interpreter) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := p.stats
	s.IntentDistribution = maps.Clone(p.stats.IntentDistribution)
	return s
}

// ResetStats resets all statistics.
func (p *Interpreter) ResetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats = Stats{IntentDistribution: make(map[nlp.IntentType]int64)}
}
