package enrich

import (
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/nlp"
)

const (
	fullScopeServiceCount = 2
	highRiskServiceCount  = 3
	dimensionBonus        = 0.1
	lowRiskBonus          = 0.1
	highRiskPenalty       = 0.1
)

// Enricher derives execution context from entities and intent. It holds
// only immutable tables and is safe for concurrent use.
type Enricher struct {
	lex *lexicon.Lexicon
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLexicon replaces the default lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(e *Enricher) {
		e.lex = lex
	}
}

// New creates an Enricher over the default lexicon.
func New(opts ...Option) *Enricher {
	e := &Enricher{lex: lexicon.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich derives scope, strategy, risk and timing, injects their default
// parameters in that order (later dimensions win), collects suggestions and
// recomputes confidence.
func (e *Enricher) Enrich(intent nlp.ClassifiedIntent, entities nlp.EntitySet) Result {
	services := entities.Values(lexicon.CategoryService)
	testTypes := entities.Values(lexicon.CategoryTestType)
	affected := e.affectedServices(services)

	ctx := ExecutionContext{
		Scope:     e.scope(entities, services, affected),
		Strategy:  e.strategy(entities, testTypes),
		Risk:      e.risk(services, testTypes, affected),
		Timing:    e.timing(entities),
		Resources: e.resources(services, testTypes),
	}

	defaults := make(map[string]any)
	overlay(defaults, scopeDefaults[ctx.Scope])
	overlay(defaults, strategyDefaults[ctx.Strategy])
	overlay(defaults, riskDefaults[ctx.Risk])
	overlay(defaults, timingDefaults[ctx.Timing])

	params := nlp.IntentParameters(entities, intent.Confidence)
	overlay(params, defaults)

	res := Result{
		AffectedServices: affected,
		Context:          ctx,
		Defaults:         defaults,
		Parameters:       params,
		Suggestions:      e.suggestions(ctx, services, testTypes),
		Confidence:       confidence(intent, ctx),
	}

	log.Debug().
		Str("scope", string(ctx.Scope)).
		Str("strategy", string(ctx.Strategy)).
		Str("risk", ctx.Risk.String()).
		Str("timing", string(ctx.Timing)).
		Int("affected", len(affected)).
		Msg("context enriched")

	return res
}

// Fallback is the result used when enrichment cannot run. It keeps the
// explicit services and the intent parameters but derives no context.
func Fallback(intent nlp.ClassifiedIntent, entities nlp.EntitySet) Result {
	return Result{
		AffectedServices: entities.Values(lexicon.CategoryService),
		Context: ExecutionContext{
			Scope:     ScopeTargeted,
			Strategy:  StrategyBalanced,
			Risk:      RiskLow,
			Timing:    TimingNormal,
			Resources: map[string]string{},
		},
		Defaults:    map[string]any{},
		Parameters:  nlp.IntentParameters(entities, intent.Confidence),
		Suggestions: []string{FallbackSuggestion},
		Confidence:  0,
		Fallback:    true,
	}
}

// affectedServices returns explicit services followed by their direct
// dependencies, without duplicates. The AllServices sentinel expands to
// every concrete service.
func (e *Enricher) affectedServices(services []string) []string {
	if slices.Contains(services, lexicon.AllServices) {
		return e.lex.Services()
	}
	out := make([]string, 0, len(services))
	add := func(s string) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, s := range services {
		add(s)
	}
	for _, s := range services {
		for _, dep := range e.lex.Dependencies(s) {
			add(dep)
		}
	}
	return out
}

func (e *Enricher) scope(entities nlp.EntitySet, services, affected []string) Scope {
	if entities.Contains(lexicon.CategoryContext, lexicon.ContextScope) ||
		len(affected) > fullScopeServiceCount ||
		slices.Contains(services, lexicon.AllServices) {
		return ScopeFull
	}
	return ScopeTargeted
}

func (e *Enricher) strategy(entities nlp.EntitySet, testTypes []string) Strategy {
	switch {
	case entities.Contains(lexicon.CategoryContext, lexicon.ContextUrgency), containsAny(testTypes, disruptiveTests):
		return StrategyAggressive
	case entities.Contains(lexicon.CategoryContext, lexicon.ContextCaution):
		return StrategyConservative
	default:
		return StrategyBalanced
	}
}

// risk counts affected services for HIGH and explicit services for MEDIUM.
func (e *Enricher) risk(services, testTypes, affected []string) RiskLevel {
	switch {
	case containsAny(testTypes, disruptiveTests), len(affected) > highRiskServiceCount:
		return RiskHigh
	case containsAny(testTypes, loadTests), len(services) > 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (e *Enricher) timing(entities nlp.EntitySet) Timing {
	switch {
	case entities.Contains(lexicon.CategoryContext, lexicon.ContextUrgency):
		return TimingImmediate
	case entities.Contains(lexicon.CategoryContext, lexicon.ContextTiming):
		return TimingBackground
	default:
		return TimingNormal
	}
}

func (e *Enricher) resources(services, testTypes []string) map[string]string {
	res := map[string]string{
		"cpu":     LevelMedium,
		"memory":  LevelMedium,
		"network": LevelMedium,
		"storage": LevelLow,
	}
	if containsAny(testTypes, loadTests) {
		res["cpu"] = LevelHigh
		res["memory"] = LevelHigh
	}
	if len(services) > 1 {
		res["network"] = LevelHigh
	}
	if containsAny(testTypes, []string{lexicon.TestPerformance, lexicon.TestChaos}) {
		res["storage"] = LevelHigh
	}
	return res
}

func (e *Enricher) suggestions(ctx ExecutionContext, services, testTypes []string) []string {
	var out []string
	add := func(texts ...string) {
		for _, t := range texts {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}

	for _, s := range services {
		add(e.lex.ServiceAdvice(s)...)
	}
	for _, tt := range testTypes {
		add(e.lex.TestTypeAdvice(tt)...)
	}
	if ctx.Risk == RiskHigh {
		add(highRiskAdvice...)
	}
	if ctx.Scope == ScopeFull {
		add(fullScopeAdvice...)
	}
	if slices.Contains(services, lexicon.ServiceOrder) && slices.Contains(testTypes, lexicon.TestChaos) {
		add(chaosOrderNote)
	}
	if len(services) > fullScopeServiceCount && slices.Contains(testTypes, lexicon.TestPerformance) {
		add(multiPerfNote)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// confidence adjusts the intent confidence by the derived dimensions.
// UNKNOWN intents stay at zero.
func confidence(intent nlp.ClassifiedIntent, ctx ExecutionContext) float64 {
	if intent.Type == nlp.IntentUnknown {
		return 0
	}
	c := intent.Confidence
	if ctx.Scope != "" {
		c += dimensionBonus
	}
	if ctx.Strategy != "" {
		c += dimensionBonus
	}
	if ctx.Risk == RiskLow {
		c += lowRiskBonus
	}
	if ctx.Risk == RiskHigh && ctx.Strategy != StrategyConservative {
		c -= highRiskPenalty
	}
	return math.Max(0, math.Min(1, c))
}

func overlay(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

func containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		if slices.Contains(haystack, n) {
			return true
		}
	}
	return false
}
