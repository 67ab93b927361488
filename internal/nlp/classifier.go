package nlp

import (
	"fmt"
	"math"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
)

const (
	// DefaultMaxPatterns caps the size of the pattern table at load time.
	DefaultMaxPatterns = 100

	anyConditionBonus   = 0.1
	valueConditionBonus = 0.2

	entityBonusStep   = 0.05
	entityBonusCap    = 0.2
	strongEntityBonus = 0.05
	strongEntityFloor = 0.9
	actionVerbBonus   = 0.1
)

var actionVerbPattern = regexp.MustCompile(`\b(run|execute|start|launch|test|analyze|generate|optimize)\b`)

// ClassifiedIntent is the output of the classifier.
type ClassifiedIntent struct {
	Type       IntentType             `json:"type"`
	Confidence float64                `json:"confidence"`
	Scores     map[IntentType]float64 `json:"scores"`
	// Matched lists the patterns of the winning intent that matched.
	Matched []string `json:"matched,omitempty"`
}

// Unknown returns the UNKNOWN intent with confidence 0.
func Unknown() ClassifiedIntent {
	return ClassifiedIntent{Type: IntentUnknown, Scores: map[IntentType]float64{}}
}

type compiledPattern struct {
	regex      *regexp.Regexp
	weight     float64
	conditions []Condition
}

type compiledRule struct {
	intent   IntentType
	patterns []compiledPattern
}

// Classifier scores intents with weighted regex patterns. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	rules []compiledRule
}

type classifierConfig struct {
	rules       []IntentRule
	maxPatterns int
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*classifierConfig)

// WithRules replaces the built-in pattern table.
func WithRules(rules []IntentRule) ClassifierOption {
	return func(c *classifierConfig) {
		c.rules = rules
	}
}

// WithMaxPatterns sets the load-time cap on total pattern count.
func WithMaxPatterns(n int) ClassifierOption {
	return func(c *classifierConfig) {
		c.maxPatterns = n
	}
}

// NewClassifier compiles the pattern table. It fails when a pattern does not
// compile, a rule is empty or names an invalid intent, or the table exceeds
// the pattern cap.
func NewClassifier(opts ...ClassifierOption) (*Classifier, error) {
	cfg := classifierConfig{
		rules:       DefaultRules(),
		maxPatterns: DefaultMaxPatterns,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	total := 0
	for _, r := range cfg.rules {
		total += len(r.Patterns)
	}
	if total > cfg.maxPatterns {
		return nil, fmt.Errorf("pattern table has %d patterns, limit is %d", total, cfg.maxPatterns)
	}

	c := &Classifier{}
	for _, r := range cfg.rules {
		if !r.Intent.IsValid() || r.Intent == IntentUnknown {
			return nil, fmt.Errorf("invalid intent %q in pattern table", r.Intent)
		}
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("intent %s has no patterns", r.Intent)
		}
		rule := compiledRule{intent: r.Intent}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for %s: %w", p.Pattern, r.Intent, err)
			}
			rule.patterns = append(rule.patterns, compiledPattern{
				regex:      re,
				weight:     p.Weight,
				conditions: append([]Condition(nil), p.Conditions...),
			})
		}
		c.rules = append(c.rules, rule)
	}
	return c, nil
}

// PatternCount returns the total number of compiled patterns.
func (c *Classifier) PatternCount() int {
	n := 0
	for _, r := range c.rules {
		n += len(r.patterns)
	}
	return n
}

// Classify scores every intent against the normalized text and entities and
// returns the best one. An intent's score is the sum of its matching
// pattern scores divided by its total pattern count. The first declared
// intent wins ties; no positive score yields UNKNOWN.
func (c *Classifier) Classify(in Input, entities EntitySet) ClassifiedIntent {
	result := ClassifiedIntent{
		Type:   IntentUnknown,
		Scores: make(map[IntentType]float64, len(c.rules)),
	}
	if in.Normalized == "" {
		return result
	}

	var best float64
	for _, r := range c.rules {
		var sum float64
		var matched []string
		for _, p := range r.patterns {
			if !p.regex.MatchString(in.Normalized) {
				continue
			}
			sum += p.score(entities)
			matched = append(matched, p.regex.String())
		}
		score := sum / float64(len(r.patterns))
		result.Scores[r.intent] = score

		if score > best {
			best = score
			result.Type = r.intent
			result.Matched = matched
		}
	}

	if result.Type == IntentUnknown {
		return result
	}
	result.Confidence = confidence(best, in.Normalized, entities)

	log.Debug().
		Str("intent", result.Type.String()).
		Float64("score", best).
		Float64("confidence", result.Confidence).
		Msg("intent classified")

	return result
}

// score is the pattern weight plus condition bonuses, capped at 1.
func (p compiledPattern) score(entities EntitySet) float64 {
	s := p.weight
	for _, cond := range p.conditions {
		switch {
		case cond.Value == "" && entities.Has(cond.Category):
			s += anyConditionBonus
		case cond.Value != "" && entities.Contains(cond.Category, cond.Value):
			s += valueConditionBonus
		}
	}
	return math.Min(s, 1.0)
}

// confidence combines the winning score with entity and verb evidence.
func confidence(base float64, text string, entities EntitySet) float64 {
	c := base
	c += math.Min(entityBonusCap, entityBonusStep*float64(entities.Total()))
	for _, cat := range lexicon.Categories() {
		for _, e := range entities.Get(cat) {
			if e.Confidence > strongEntityFloor {
				c += strongEntityBonus
			}
		}
	}
	if actionVerbPattern.MatchString(text) {
		c += actionVerbBonus
	}
	return clamp01(c)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
