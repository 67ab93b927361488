package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/enrich"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/nlp"
)

type staged struct {
	intent   nlp.ClassifiedIntent
	entities nlp.EntitySet
	enriched enrich.Result
}

func stage(t *testing.T, text string) staged {
	t.Helper()
	classifier, err := nlp.NewClassifier()
	require.NoError(t, err)

	in := nlp.Normalize(text)
	entities := nlp.NewExtractor().Extract(in)
	intent := classifier.Classify(in, entities)
	return staged{
		intent:   intent,
		entities: entities,
		enriched: enrich.New().Enrich(intent, entities),
	}
}

func mapText(t *testing.T, text string) (ExecutableAction, staged) {
	t.Helper()
	s := stage(t, text)
	action, err := New().Map(s.intent, s.entities, s.enriched)
	require.NoError(t, err)
	return action, s
}

func TestMap_ChaosOnOrders(t *testing.T) {
	action, s := mapText(t, "run chaos test on orders")

	assert.Equal(t, ActionRunChaosTest, action.ActionType)
	assert.Equal(t, lexicon.ServiceOrder, action.ServiceName)
	assert.Equal(t, lexicon.TestChaos, action.TestType)
	assert.Equal(t, "15 minutes", action.EstimatedDuration)
	assert.Equal(t, "Run chaos test for order-service", action.Description)
	assert.Equal(t, PriorityNormal, action.Priority)
	assert.Equal(t, s.enriched.Confidence, action.Confidence)

	assert.Equal(t, lexicon.TestChaos, action.Parameters["testType"])
	assert.Equal(t, lexicon.ServiceOrder, action.Parameters["serviceName"])
	// enrichment defaults override the template defaults
	assert.Equal(t, "300s", action.Parameters[enrich.ParamTimeout])
	assert.Equal(t, 3, action.Parameters[enrich.ParamRetries])
	assert.Equal(t, enrich.LevelHigh, action.Parameters[enrich.ParamChaosLevel])
	assert.Equal(t, true, action.Parameters[enrich.ParamRollbackEnabled])
	assert.Equal(t, "FULL", action.Parameters[enrich.ParamScope])
}

func TestMap_ExplicitServicesAreNotMultiplied(t *testing.T) {
	action, _ := mapText(t, "run performance test on users and products")

	assert.Equal(t, ActionRunPerformanceTest, action.ActionType)
	assert.Equal(t, lexicon.ServiceUser, action.ServiceName)
	assert.Equal(t, lexicon.TestPerformance, action.TestType)
	assert.Equal(t, "30 minutes", action.EstimatedDuration)
	assert.Equal(t, "medium", action.Parameters[enrich.ParamLoadLevel])
}

func TestMap_AnalyzeFailures(t *testing.T) {
	action, _ := mapText(t, "analyze why user-service failed")

	assert.Equal(t, ActionAnalyzeFailures, action.ActionType)
	assert.Equal(t, lexicon.ServiceUser, action.ServiceName)
	assert.Equal(t, lexicon.TestDiagnostic, action.TestType)
	assert.Equal(t, "5 minutes", action.EstimatedDuration)
	assert.Equal(t, "Analyze diagnostic test for user-service", action.Description)
	assert.Equal(t, "detailed", action.Parameters["analysisDepth"])
	assert.Equal(t, 1.0, action.Confidence)
}

func TestMap_AllServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		testType    string
		duration    string
		description string
	}{
		{
			name:        "sentinel named",
			input:       "run smoke test on all services",
			testType:    lexicon.TestSmoke,
			duration:    "30 minutes",
			description: "Run smoke test across all services",
		},
		{
			name:        "no service named",
			input:       "run unit tests",
			testType:    lexicon.TestUnit,
			duration:    "15 minutes",
			description: "Run unit test across all services",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, _ := mapText(t, tt.input)

			assert.Equal(t, ActionRunTest, action.ActionType)
			assert.Equal(t, lexicon.AllServices, action.ServiceName)
			assert.Equal(t, tt.testType, action.TestType)
			assert.Equal(t, tt.duration, action.EstimatedDuration)
			assert.Equal(t, tt.description, action.Description)
		})
	}
}

func TestMap_ExplicitParametersWin(t *testing.T) {
	action, _ := mapText(t, "run unit tests on orders with 3 retries p2 in 5 minutes")

	assert.Equal(t, ActionRunTest, action.ActionType)
	assert.Equal(t, "300s", action.Parameters[enrich.ParamTimeout])
	assert.Equal(t, 3, action.Parameters[enrich.ParamRetries])
	assert.Equal(t, PriorityMedium, action.Parameters[enrich.ParamPriority])
	assert.Equal(t, PriorityMedium, action.Priority)
	assert.Equal(t, "5 minutes", action.EstimatedDuration)
}

func TestMap_PriorityDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		priority string
		timeout  string
		retries  int
		parallel bool
	}{
		{"explicit p0", "run unit test on user service p0", PriorityHigh, "60s", 5, true},
		{"immediate timing", "run smoke test on gateway now", PriorityHigh, "60s", 5, true},
		{"background timing", "run smoke test on gateway later", PriorityLow, "300s", 1, false},
		{"explicit p3", "run unit test on user service p3", PriorityLow, "300s", 1, false},
		{"explicit values still win", "run unit test on user service p0 with 2 retries in 10 seconds", PriorityHigh, "10s", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, _ := mapText(t, tt.input)

			assert.Equal(t, tt.priority, action.Priority)
			assert.Equal(t, tt.priority, action.Parameters[enrich.ParamPriority])
			assert.Equal(t, tt.timeout, action.Parameters[enrich.ParamTimeout])
			assert.Equal(t, tt.retries, action.Parameters[enrich.ParamRetries])
			assert.Equal(t, tt.parallel, action.Parameters[enrich.ParamParallel])
		})
	}
}

func TestMap_NormalPriorityLeavesParametersUnset(t *testing.T) {
	for _, input := range []string{
		"run unit test on user service",
		"run unit test on user service p99999999999999999999",
	} {
		t.Run(input, func(t *testing.T) {
			action, _ := mapText(t, input)

			assert.Equal(t, PriorityNormal, action.Priority)
			assert.NotContains(t, action.Parameters, enrich.ParamPriority)
			assert.Equal(t, "120s", action.Parameters[enrich.ParamTimeout])
		})
	}
}

func TestMap_OversizedTimeoutKeepsDefault(t *testing.T) {
	action, _ := mapText(t, "run unit test on user service timeout 3000000000000000 hours")

	assert.Equal(t, "120s", action.Parameters[enrich.ParamTimeout])
}

func TestMap_Priority(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"run smoke test on gateway now", PriorityHigh},
		{"run smoke test on gateway later", PriorityLow},
		{"run important smoke test on gateway", PriorityMedium},
		{"run smoke test on gateway", PriorityNormal},
		{"run smoke test on gateway p0", PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			action, _ := mapText(t, tt.input)
			assert.Equal(t, tt.expected, action.Priority)
		})
	}
}

func TestExplicitPriority(t *testing.T) {
	tests := map[string]string{
		"P0": PriorityHigh,
		"P1": PriorityHigh,
		"P2": PriorityMedium,
		"P3": PriorityLow,
		"P9": PriorityLow,
		"Px": PriorityNormal,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, explicitPriority(in), in)
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		name     string
		base     int
		testType string
		service  string
		expected string
	}{
		{"unit ceiling", 10, lexicon.TestUnit, lexicon.ServiceUser, "5 minutes"},
		{"integration floor", 4, lexicon.TestIntegration, lexicon.ServiceUser, "10 minutes"},
		{"performance floor", 10, lexicon.TestPerformance, lexicon.ServiceUser, "30 minutes"},
		{"end to end floor", 10, lexicon.TestEndToEnd, lexicon.ServiceUser, "20 minutes"},
		{"chaos all services", 15, lexicon.TestChaos, lexicon.AllServices, "45 minutes"},
		{"unbounded", 7, lexicon.TestSmoke, lexicon.ServiceUser, "7 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, estimateDuration(tt.base, tt.testType, tt.service))
		})
	}
}

func TestBestTemplate(t *testing.T) {
	params := map[string]any{
		nlp.KeyServices:  []string{lexicon.ServiceOrder},
		nlp.KeyTestTypes: []string{lexicon.TestChaos},
	}

	t.Run("score is capped", func(t *testing.T) {
		tmpl := Template{
			ActionType:         "X",
			Required:           []string{nlp.KeyServices, nlp.KeyTestTypes},
			PreferredTestTypes: []string{lexicon.TestChaos},
			PreferredServices:  []string{lexicon.ServiceOrder},
		}
		assert.Equal(t, 1.0, scoreTemplate(tmpl, params))
	})

	t.Run("empty lists do not count", func(t *testing.T) {
		tmpl := Template{ActionType: "X", Required: []string{nlp.KeyServices}}
		empty := map[string]any{nlp.KeyServices: []string{}}
		assert.Equal(t, 0.5, scoreTemplate(tmpl, empty))
	})

	t.Run("first template wins ties", func(t *testing.T) {
		templates := []Template{
			{ActionType: "FIRST", Required: []string{nlp.KeyServices}},
			{ActionType: "SECOND", Required: []string{nlp.KeyTestTypes}},
		}
		best, score := bestTemplate(templates, params)
		assert.Equal(t, "FIRST", best.ActionType)
		assert.InDelta(t, 0.7, score, 1e-12)
	})
}

func TestMap_UnknownIntent(t *testing.T) {
	action, err := New().Map(nlp.Unknown(), nlp.EntitySet{}, enrich.Fallback(nlp.Unknown(), nlp.EntitySet{}))

	require.NoError(t, err)
	assert.Equal(t, UnknownAction(), action)
	assert.Equal(t, "unknown", action.EstimatedDuration)
	assert.NotNil(t, action.Parameters)
}

func TestMap_InvalidTemplateYieldsErrorAction(t *testing.T) {
	s := stage(t, "run chaos test on orders")
	m := New(WithTemplates(map[nlp.IntentType][]Template{
		nlp.IntentRunTests: {{Verb: "Run"}},
	}))

	action, err := m.Map(s.intent, s.entities, s.enriched)

	require.Error(t, err)
	assert.Equal(t, ActionError, action.ActionType)
	assert.Equal(t, 0.0, action.Confidence)
	assert.Equal(t, err.Error(), action.Parameters[ParamError])
	assert.Equal(t, "Error mapping intent: "+err.Error(), action.Description)
	assert.Contains(t, err.Error(), "no action type")
}
