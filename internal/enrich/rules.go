package enrich

import "github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"

// Parameter names injected by the rule tables.
const (
	ParamTimeout           = "timeout"
	ParamRetries           = "retries"
	ParamParallel          = "parallel"
	ParamChaosLevel        = "chaosLevel"
	ParamLoadLevel         = "loadLevel"
	ParamRollbackEnabled   = "rollbackEnabled"
	ParamMonitoringEnabled = "monitoringEnabled"
	ParamAlertingEnabled   = "alertingEnabled"
	ParamPriority          = "priority"
	ParamScope             = "scope"
)

// Priorities set by timing.
const (
	PriorityHigh = "HIGH"
	PriorityLow  = "LOW"
)

var scopeDefaults = map[Scope]map[string]any{
	ScopeFull:     {ParamTimeout: "600s", ParamParallel: true, ParamRetries: 3},
	ScopeTargeted: {ParamTimeout: "120s", ParamParallel: false, ParamRetries: 2},
}

var strategyDefaults = map[Strategy]map[string]any{
	StrategyAggressive:   {ParamChaosLevel: LevelHigh, ParamLoadLevel: LevelHigh, ParamTimeout: "300s"},
	StrategyBalanced:     {ParamChaosLevel: LevelMedium, ParamLoadLevel: LevelMedium},
	StrategyConservative: {ParamChaosLevel: LevelLow, ParamLoadLevel: LevelLow, ParamTimeout: "60s"},
}

var riskDefaults = map[RiskLevel]map[string]any{
	RiskHigh:   {ParamRollbackEnabled: true, ParamMonitoringEnabled: true, ParamAlertingEnabled: true},
	RiskMedium: {ParamMonitoringEnabled: true},
}

var timingDefaults = map[Timing]map[string]any{
	TimingImmediate:  {ParamPriority: PriorityHigh, ParamTimeout: "30s"},
	TimingBackground: {ParamPriority: PriorityLow, ParamTimeout: "1800s"},
}

var (
	disruptiveTests = []string{lexicon.TestChaos, lexicon.TestStress}
	loadTests       = []string{lexicon.TestPerformance, lexicon.TestLoad}
)

var (
	highRiskAdvice = []string{
		"Consider running in a staging environment first",
		"Enable comprehensive monitoring during execution",
		"Prepare rollback procedures",
	}
	fullScopeAdvice = []string{
		"This will affect multiple services - ensure all dependencies are healthy",
		"Consider running during low-traffic periods",
	}
)

const (
	chaosOrderNote = "Previous chaos tests on order service showed payment gateway sensitivity"
	multiPerfNote  = "Multi-service performance tests typically take 30+ minutes"

	// FallbackSuggestion is the only suggestion of a fallback result.
	FallbackSuggestion = "Unable to process context - proceeding with basic execution"
)
