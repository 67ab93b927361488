package mapper

import (
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/nlp"
)

// Action types.
const (
	ActionRunTest            = "RUN_TEST"
	ActionRunChaosTest       = "RUN_CHAOS_TEST"
	ActionRunPerformanceTest = "RUN_PERFORMANCE_TEST"
	ActionAnalyzeFailures    = "ANALYZE_FAILURES"
	ActionGenerateTests      = "GENERATE_TESTS"
	ActionOptimizeTests      = "OPTIMIZE_TESTS"
	ActionHealthCheck        = "HEALTH_CHECK"
	ActionUnknown            = "UNKNOWN"
	ActionError              = "ERROR"
)

// Template is a candidate action shape for an intent.
type Template struct {
	ActionType string
	// Verb starts the action description.
	Verb string
	// Required are intent parameter keys that raise the template score
	// when non-empty.
	Required           []string
	PreferredTestTypes []string
	PreferredServices  []string
	// Fields maps action parameter names to intent parameter keys. List
	// sources contribute their first element.
	Fields      map[string]string
	Defaults    map[string]any
	BaseMinutes int
}

var targetFields = map[string]string{
	"testType":    nlp.KeyTestTypes,
	"serviceName": nlp.KeyServices,
}

var serviceFields = map[string]string{
	"serviceName": nlp.KeyServices,
}

// DefaultTemplates returns the built-in templates keyed by intent. Within
// an intent, declaration order breaks score ties.
func DefaultTemplates() map[nlp.IntentType][]Template {
	return map[nlp.IntentType][]Template{
		nlp.IntentRunTests: {
			{
				ActionType:         ActionRunTest,
				Verb:               "Run",
				Required:           []string{nlp.KeyServices, nlp.KeyTestTypes},
				PreferredTestTypes: []string{lexicon.TestUnit, lexicon.TestIntegration, lexicon.TestAPI},
				Fields:             targetFields,
				Defaults:           map[string]any{"timeout": "120s", "retries": 2, "parallel": false},
				BaseMinutes:        10,
			},
			{
				ActionType:         ActionRunChaosTest,
				Verb:               "Run",
				Required:           []string{nlp.KeyServices},
				PreferredTestTypes: []string{lexicon.TestChaos},
				Fields:             targetFields,
				Defaults:           map[string]any{"timeout": "300s", "retries": 1, "chaosLevel": "medium"},
				BaseMinutes:        15,
			},
			{
				ActionType:         ActionRunPerformanceTest,
				Verb:               "Run",
				Required:           []string{nlp.KeyServices},
				PreferredTestTypes: []string{lexicon.TestPerformance, lexicon.TestLoad, lexicon.TestStress},
				Fields:             targetFields,
				Defaults:           map[string]any{"timeout": "600s", "retries": 1, "loadLevel": "medium"},
				BaseMinutes:        30,
			},
		},
		nlp.IntentAnalyzeFailures: {
			{
				ActionType:  ActionAnalyzeFailures,
				Verb:        "Analyze",
				Required:    []string{nlp.KeyServices},
				Fields:      serviceFields,
				Defaults:    map[string]any{"timeout": "60s", "retries": 1, "analysisDepth": "detailed"},
				BaseMinutes: 5,
			},
		},
		nlp.IntentGenerateTests: {
			{
				ActionType:         ActionGenerateTests,
				Verb:               "Generate",
				Required:           []string{nlp.KeyServices},
				PreferredTestTypes: []string{lexicon.TestUnit, lexicon.TestIntegration},
				Fields:             targetFields,
				Defaults:           map[string]any{"timeout": "300s", "retries": 1, "generationType": "comprehensive"},
				BaseMinutes:        20,
			},
		},
		nlp.IntentOptimizeTests: {
			{
				ActionType:  ActionOptimizeTests,
				Verb:        "Optimize",
				Required:    []string{nlp.KeyServices},
				Fields:      serviceFields,
				Defaults:    map[string]any{"timeout": "180s", "retries": 1, "optimizationLevel": "aggressive"},
				BaseMinutes: 15,
			},
		},
		nlp.IntentHealthCheck: {
			{
				ActionType:         ActionHealthCheck,
				Verb:               "Run",
				Required:           []string{nlp.KeyServices},
				PreferredTestTypes: []string{lexicon.TestHealthCheck},
				Fields:             serviceFields,
				Defaults:           map[string]any{"timeout": "30s", "retries": 3, "checkType": "comprehensive"},
				BaseMinutes:        2,
			},
		},
	}
}

// fallbackTestTypes is the test type used when the command names none.
var fallbackTestTypes = map[nlp.IntentType]string{
	nlp.IntentRunTests:        lexicon.TestIntegration,
	nlp.IntentAnalyzeFailures: lexicon.TestDiagnostic,
	nlp.IntentGenerateTests:   lexicon.TestUnit,
	nlp.IntentOptimizeTests:   lexicon.TestPerformance,
	nlp.IntentHealthCheck:     lexicon.TestHealthCheck,
}

// priorityDefaults overlay the enrichment defaults once the action
// priority is resolved.
var priorityDefaults = map[string]map[string]any{
	PriorityHigh: {"timeout": "60s", "retries": 5, "parallel": true},
	PriorityLow:  {"timeout": "300s", "retries": 1, "parallel": false},
}

// durationBound limits the estimated minutes of a test type.
type durationBound struct {
	floor   int
	ceiling int
}

var durationBounds = map[string]durationBound{
	lexicon.TestUnit:        {ceiling: 5},
	lexicon.TestIntegration: {floor: 10},
	lexicon.TestPerformance: {floor: 30},
	lexicon.TestChaos:       {floor: 15},
	lexicon.TestEndToEnd:    {floor: 20},
}

const allServicesMultiplier = 3
