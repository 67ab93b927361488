package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
)

func classify(t *testing.T, text string) ClassifiedIntent {
	t.Helper()
	c, err := NewClassifier()
	require.NoError(t, err)
	in := Normalize(text)
	return c.Classify(in, NewExtractor().Extract(in))
}

func TestIntentType_IsValid(t *testing.T) {
	for _, it := range IntentTypes() {
		assert.True(t, it.IsValid(), it.String())
	}
	assert.True(t, IntentUnknown.IsValid())
	assert.False(t, IntentType("DEPLOY").IsValid())
}

func TestNewClassifier_Defaults(t *testing.T) {
	c, err := NewClassifier()
	require.NoError(t, err)
	assert.Equal(t, 23, c.PatternCount())
}

func TestNewClassifier_MaxPatterns(t *testing.T) {
	_, err := NewClassifier(WithMaxPatterns(22))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 22")

	_, err = NewClassifier(WithMaxPatterns(23))
	assert.NoError(t, err)
}

func TestNewClassifier_RejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []IntentRule
	}{
		{"bad regex", []IntentRule{{Intent: IntentRunTests, Patterns: []PatternSpec{{Pattern: `run(`, Weight: 1}}}}},
		{"unknown intent", []IntentRule{{Intent: IntentUnknown, Patterns: []PatternSpec{{Pattern: `x`, Weight: 1}}}}},
		{"invalid intent", []IntentRule{{Intent: "DEPLOY", Patterns: []PatternSpec{{Pattern: `x`, Weight: 1}}}}},
		{"empty rule", []IntentRule{{Intent: IntentRunTests}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(WithRules(tt.rules))
			assert.Error(t, err)
		})
	}
}

func TestClassify_Empty(t *testing.T) {
	got := classify(t, "")
	assert.Equal(t, IntentUnknown, got.Type)
	assert.Equal(t, 0.0, got.Confidence)
}

func TestClassify_NoMatch(t *testing.T) {
	got := classify(t, "hello there")
	assert.Equal(t, IntentUnknown, got.Type)
	assert.Equal(t, 0.0, got.Confidence)
	for _, s := range got.Scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestClassify_RunChaosOnOrders(t *testing.T) {
	got := classify(t, "run chaos test on orders")

	require.Equal(t, IntentRunTests, got.Type)
	// two of seven RUN_TESTS patterns match, each capped at 1.0;
	// the divisor counts non-matching patterns too
	assert.InDelta(t, 2.0/7.0, got.Scores[IntentRunTests], 1e-12)
	assert.Equal(t, []string{`run.*test`, `run.*chaos`}, got.Matched)
	// 4 entities (+0.2), 4 strong entities (+0.2), action verb (+0.1)
	assert.InDelta(t, 2.0/7.0+0.5, got.Confidence, 1e-12)
}

func TestClassify_AnalyzeFailures(t *testing.T) {
	got := classify(t, "analyze why user-service failed")

	require.Equal(t, IntentAnalyzeFailures, got.Type)
	assert.InDelta(t, 0.5, got.Scores[IntentAnalyzeFailures], 1e-12)
	assert.InDelta(t, 0.8, got.Confidence, 1e-12)
}

func TestClassify_Intents(t *testing.T) {
	tests := []struct {
		input    string
		expected IntentType
	}{
		{"execute integration tests for products", IntentRunTests},
		{"investigate the error in gateway", IntentAnalyzeFailures},
		{"what went wrong with notifications", IntentAnalyzeFailures},
		{"generate unit tests for user service", IntentGenerateTests},
		{"create contract tests", IntentGenerateTests},
		{"optimize the regression tests", IntentOptimizeTests},
		{"enhance flaky tests to be faster", IntentOptimizeTests},
		{"health check on all services", IntentHealthCheck},
		{"show order service status", IntentHealthCheck},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := classify(t, tt.input)
			assert.Equal(t, tt.expected, got.Type)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestClassify_TieGoesToFirstDeclared(t *testing.T) {
	rules := []IntentRule{
		{Intent: IntentHealthCheck, Patterns: []PatternSpec{{Pattern: `ping`, Weight: 0.5}}},
		{Intent: IntentRunTests, Patterns: []PatternSpec{{Pattern: `ping`, Weight: 0.5}}},
	}
	c, err := NewClassifier(WithRules(rules))
	require.NoError(t, err)

	got := c.Classify(Normalize("ping"), EntitySet{})
	assert.Equal(t, IntentHealthCheck, got.Type)
	assert.Equal(t, got.Scores[IntentHealthCheck], got.Scores[IntentRunTests])
}

func TestClassify_ConditionBonuses(t *testing.T) {
	rules := []IntentRule{
		{Intent: IntentRunTests, Patterns: []PatternSpec{
			{Pattern: `go`, Weight: 0.5, Conditions: []Condition{
				Any(lexicon.CategoryService),
				Is(lexicon.CategoryAction, lexicon.ActionRun),
				Is(lexicon.CategoryTestType, lexicon.TestChaos),
			}},
		}},
	}
	c, err := NewClassifier(WithRules(rules))
	require.NoError(t, err)

	entities := EntitySet{
		lexicon.CategoryService: {{Category: lexicon.CategoryService, Value: lexicon.ServiceUser, Confidence: 0.5}},
		lexicon.CategoryAction:  {{Category: lexicon.CategoryAction, Value: lexicon.ActionRun, Confidence: 0.5}},
	}
	got := c.Classify(Normalize("go"), entities)

	// 0.5 + 0.1 (any service) + 0.2 (run); chaos absent
	assert.InDelta(t, 0.8, got.Scores[IntentRunTests], 1e-12)
	// 2 weak entities add 0.1, no strong entities, no action verb
	assert.InDelta(t, 0.9, got.Confidence, 1e-12)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	got := classify(t, "run chaos test now on all services with full load and stress test")
	assert.Equal(t, IntentRunTests, got.Type)
	assert.LessOrEqual(t, got.Confidence, 1.0)
}
