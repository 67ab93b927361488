// Package nlp turns raw command text into normalized tokens, typed entities
// and a classified intent. Every function here is pure: it reads only its
// arguments and the immutable tables in package lexicon.
package nlp

import (
	"sort"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
)

// Token is a normalized word.
type Token struct {
	Text string `json:"text"`
	// Special marks annotation-like (@x), priority (p1) and numeric tokens.
	Special bool `json:"special,omitempty"`
}

// Input is the output of the normalizer.
type Input struct {
	Original   string  `json:"original"`
	Normalized string  `json:"normalized"`
	Tokens     []Token `json:"tokens"`
}

// Words returns every token's text.
func (in Input) Words() []string {
	out := make([]string, 0, len(in.Tokens))
	for _, t := range in.Tokens {
		out = append(out, t.Text)
	}
	return out
}

// SpecialTokens returns the text of tokens flagged as special.
func (in Input) SpecialTokens() []string {
	var out []string
	for _, t := range in.Tokens {
		if t.Special {
			out = append(out, t.Text)
		}
	}
	return out
}

// Entity is a typed span extracted from the command.
type Entity struct {
	Category lexicon.Category `json:"category"`
	// Value is the canonical value, or the parameter name for parameters.
	Value string `json:"value"`
	// Text is the span that produced the match.
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// EntitySet groups entities by category. Each list is deduplicated by value
// and ordered by descending confidence.
type EntitySet map[lexicon.Category][]Entity

// Get returns the entities of one category.
func (s EntitySet) Get(c lexicon.Category) []Entity {
	return s[c]
}

// Values returns the canonical values of one category, in ranked order.
func (s EntitySet) Values(c lexicon.Category) []string {
	list := s[c]
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Value)
	}
	return out
}

// First returns the highest ranked value of a category.
func (s EntitySet) First(c lexicon.Category) (string, bool) {
	if list := s[c]; len(list) > 0 {
		return list[0].Value, true
	}
	return "", false
}

// Has reports whether any entity of the category was extracted.
func (s EntitySet) Has(c lexicon.Category) bool {
	return len(s[c]) > 0
}

// Contains reports whether the category holds value.
func (s EntitySet) Contains(c lexicon.Category, value string) bool {
	for _, e := range s[c] {
		if e.Value == value {
			return true
		}
	}
	return false
}

// Lookup returns the entity with the given value.
func (s EntitySet) Lookup(c lexicon.Category, value string) (Entity, bool) {
	for _, e := range s[c] {
		if e.Value == value {
			return e, true
		}
	}
	return Entity{}, false
}

// Total counts entities across all categories.
func (s EntitySet) Total() int {
	n := 0
	for _, list := range s {
		n += len(list)
	}
	return n
}

// All flattens the set in category order.
func (s EntitySet) All() []Entity {
	var out []Entity
	for _, c := range lexicon.Categories() {
		out = append(out, s[c]...)
	}
	return out
}

// collector accumulates matches for one category, keeping the best
// confidence per value and first-seen order for ties.
type collector struct {
	category lexicon.Category
	entities []Entity
	index    map[string]int
}

func newCollector(c lexicon.Category) *collector {
	return &collector{category: c, index: make(map[string]int)}
}

func (c *collector) add(value, text string, confidence float64) {
	if i, ok := c.index[value]; ok {
		if confidence > c.entities[i].Confidence {
			c.entities[i].Text = text
			c.entities[i].Confidence = confidence
		}
		return
	}
	c.index[value] = len(c.entities)
	c.entities = append(c.entities, Entity{
		Category:   c.category,
		Value:      value,
		Text:       text,
		Confidence: confidence,
	})
}

func (c *collector) ranked() []Entity {
	out := append([]Entity(nil), c.entities...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
