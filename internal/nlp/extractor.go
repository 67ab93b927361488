package nlp

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
)

// Parameter names produced by regex extraction.
const (
	ParamTimeout  = "timeout"
	ParamRetries  = "retries"
	ParamPriority = "priority"
)

var (
	timeoutPattern  = regexp.MustCompile(`(\d+)\s*(seconds?|minutes?|hours?|secs?|mins?|hrs?)`)
	retriesPattern  = regexp.MustCompile(`(\d+)\s*retries?`)
	priorityPattern = regexp.MustCompile(`p(\d+)`)
)

// lexiconCategories are the categories matched against synonym tables.
var lexiconCategories = []lexicon.Category{
	lexicon.CategoryService,
	lexicon.CategoryTestType,
	lexicon.CategoryAction,
	lexicon.CategoryContext,
}

// Extractor pulls typed entities out of normalized input. It is safe for
// concurrent use.
type Extractor struct {
	lex       *lexicon.Lexicon
	threshold float64
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithFuzzyThreshold sets the minimum similarity for approximate matches.
func WithFuzzyThreshold(threshold float64) ExtractorOption {
	return func(x *Extractor) {
		x.threshold = threshold
	}
}

// WithLexicon replaces the default lexicon.
func WithLexicon(lex *lexicon.Lexicon) ExtractorOption {
	return func(x *Extractor) {
		x.lex = lex
	}
}

// NewExtractor creates an extractor over the default lexicon.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		lex:       lexicon.Default(),
		threshold: DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Threshold returns the fuzzy similarity threshold in use.
func (x *Extractor) Threshold() float64 {
	return x.threshold
}

// Extract returns every entity found in in. Lexicon categories use exact
// substring matches (confidence 1.0) and per-token fuzzy matches
// (confidence = similarity). Test types also accept @annotations.
// Parameters come from fixed regexes.
func (x *Extractor) Extract(in Input) EntitySet {
	set := make(EntitySet)
	if in.Normalized == "" {
		return set
	}

	words := in.Words()
	for _, c := range lexiconCategories {
		col := newCollector(c)
		table := x.lex.Table(c)

		table.Range(func(canonical, synonym string) bool {
			if strings.Contains(in.Normalized, synonym) {
				col.add(canonical, synonym, 1.0)
			}
			return true
		})

		for _, word := range words {
			table.Range(func(canonical, synonym string) bool {
				if sim := Similarity(word, synonym); meetsThreshold(sim, x.threshold) {
					col.add(canonical, word, sim)
				}
				return true
			})
		}

		if c == lexicon.CategoryTestType {
			for _, tok := range in.SpecialTokens() {
				if !strings.HasPrefix(tok, "@") {
					continue
				}
				if testType, ok := x.lex.Annotation(tok); ok {
					col.add(testType, tok, 1.0)
				}
			}
		}

		if ranked := col.ranked(); len(ranked) > 0 {
			set[c] = ranked
		}
	}

	if params := extractParameters(in.Normalized); len(params) > 0 {
		set[lexicon.CategoryParameter] = params
	}

	log.Debug().
		Str("normalized", in.Normalized).
		Int("entities", set.Total()).
		Msg("entities extracted")

	return set
}

// extractParameters applies the timeout, retries and priority regexes.
// Only the first match of each is kept.
func extractParameters(text string) []Entity {
	var out []Entity
	if m := timeoutPattern.FindString(text); m != "" {
		out = append(out, Entity{Category: lexicon.CategoryParameter, Value: ParamTimeout, Text: m, Confidence: 1.0})
	}
	if m := retriesPattern.FindString(text); m != "" {
		out = append(out, Entity{Category: lexicon.CategoryParameter, Value: ParamRetries, Text: m, Confidence: 1.0})
	}
	if m := priorityPattern.FindStringSubmatch(text); m != nil {
		out = append(out, Entity{Category: lexicon.CategoryParameter, Value: ParamPriority, Text: "P" + m[1], Confidence: 1.0})
	}
	return out
}
