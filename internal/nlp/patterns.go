package nlp

import "github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"

// IntentType is the classified purpose of a command.
type IntentType string

const (
	IntentRunTests        IntentType = "RUN_TESTS"
	IntentAnalyzeFailures IntentType = "ANALYZE_FAILURES"
	IntentGenerateTests   IntentType = "GENERATE_TESTS"
	IntentOptimizeTests   IntentType = "OPTIMIZE_TESTS"
	IntentHealthCheck     IntentType = "HEALTH_CHECK"
	IntentUnknown         IntentType = "UNKNOWN"
)

// IntentTypes returns the classifiable intents in declaration order.
func IntentTypes() []IntentType {
	return []IntentType{
		IntentRunTests,
		IntentAnalyzeFailures,
		IntentGenerateTests,
		IntentOptimizeTests,
		IntentHealthCheck,
	}
}

// String returns the string representation of an IntentType.
func (t IntentType) String() string {
	return string(t)
}

// IsValid checks if t is a classifiable intent or UNKNOWN.
func (t IntentType) IsValid() bool {
	if t == IntentUnknown {
		return true
	}
	for _, valid := range IntentTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Condition is an entity requirement attached to a pattern. An empty Value
// asks only that the category be non-empty.
type Condition struct {
	Category lexicon.Category
	Value    string
}

// Any requires at least one entity in category c.
func Any(c lexicon.Category) Condition {
	return Condition{Category: c}
}

// Is requires category c to contain value.
func Is(c lexicon.Category, value string) Condition {
	return Condition{Category: c, Value: value}
}

// PatternSpec is one weighted regex of an intent rule.
type PatternSpec struct {
	Pattern    string
	Weight     float64
	Conditions []Condition
}

// IntentRule lists the patterns that vote for one intent.
type IntentRule struct {
	Intent   IntentType
	Patterns []PatternSpec
}

// DefaultRules returns the built-in intent pattern table in declaration
// order. Declaration order breaks score ties.
func DefaultRules() []IntentRule {
	runTest := []Condition{Is(lexicon.CategoryAction, lexicon.ActionRun), Any(lexicon.CategoryTestType)}
	runChaos := []Condition{Is(lexicon.CategoryAction, lexicon.ActionRun), Is(lexicon.CategoryTestType, lexicon.TestChaos)}
	analyze := []Condition{Is(lexicon.CategoryAction, lexicon.ActionAnalyze), Any(lexicon.CategoryService)}
	generate := []Condition{Is(lexicon.CategoryAction, lexicon.ActionGenerate), Any(lexicon.CategoryTestType)}
	optimize := []Condition{Is(lexicon.CategoryAction, lexicon.ActionOptimize), Any(lexicon.CategoryTestType)}
	health := []Condition{Is(lexicon.CategoryAction, lexicon.ActionCheck), Is(lexicon.CategoryAction, lexicon.ActionStatus)}
	status := []Condition{Is(lexicon.CategoryAction, lexicon.ActionStatus), Any(lexicon.CategoryService)}

	return []IntentRule{
		{
			Intent: IntentRunTests,
			Patterns: []PatternSpec{
				{`run.*test`, 1.0, runTest},
				{`execute.*test`, 1.0, runTest},
				{`start.*test`, 1.0, runTest},
				{`launch.*test`, 1.0, runTest},
				{`test.*run`, 0.9, runTest},
				{`chaos.*run`, 1.0, runChaos},
				{`run.*chaos`, 1.0, runChaos},
			},
		},
		{
			Intent: IntentAnalyzeFailures,
			Patterns: []PatternSpec{
				{`analyze.*fail`, 1.0, analyze},
				{`investigate.*error`, 1.0, analyze},
				{`why.*fail`, 0.9, analyze},
				{`what.*wrong`, 0.8, []Condition{Is(lexicon.CategoryAction, lexicon.ActionAnalyze)}},
			},
		},
		{
			Intent: IntentGenerateTests,
			Patterns: []PatternSpec{
				{`generate.*test`, 1.0, generate},
				{`create.*test`, 1.0, generate},
				{`make.*test`, 0.9, generate},
				{`new.*test`, 0.8, generate},
			},
		},
		{
			Intent: IntentOptimizeTests,
			Patterns: []PatternSpec{
				{`optimize.*test`, 1.0, optimize},
				{`improve.*test`, 1.0, optimize},
				{`enhance.*test`, 0.9, optimize},
				{`faster.*test`, 0.8, []Condition{Is(lexicon.CategoryAction, lexicon.ActionOptimize)}},
			},
		},
		{
			Intent: IntentHealthCheck,
			Patterns: []PatternSpec{
				{`health.*check`, 1.0, health},
				{`status.*check`, 1.0, health},
				{`system.*health`, 0.9, []Condition{Is(lexicon.CategoryAction, lexicon.ActionStatus)}},
				{`service.*status`, 0.9, status},
			},
		},
	}
}
