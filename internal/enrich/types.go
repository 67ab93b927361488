// Package enrich derives the execution context of a classified command:
// how wide it reaches, how hard it pushes, how risky it is and when it
// should run. Each derived value injects fixed default parameters.
package enrich

// Scope is how many services a command reaches.
type Scope string

const (
	ScopeFull     Scope = "FULL"
	ScopeTargeted Scope = "TARGETED"
)

// Strategy is how hard a command pushes the system under test.
type Strategy string

const (
	StrategyAggressive   Strategy = "AGGRESSIVE"
	StrategyBalanced     Strategy = "BALANCED"
	StrategyConservative Strategy = "CONSERVATIVE"
)

// RiskLevel indicates the potential blast radius of executing a command.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// String returns the upper-case risk name.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the risk level by name.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Timing is when a command should run.
type Timing string

const (
	TimingImmediate  Timing = "IMMEDIATE"
	TimingBackground Timing = "BACKGROUND"
	TimingNormal     Timing = "NORMAL"
)

// Resource levels.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// ExecutionContext holds the derived dimensions of a command.
type ExecutionContext struct {
	Scope     Scope             `json:"scope"`
	Strategy  Strategy          `json:"strategy"`
	Risk      RiskLevel         `json:"risk"`
	Timing    Timing            `json:"timing"`
	Resources map[string]string `json:"resources"`
}

// Result is the output of the enricher.
type Result struct {
	// AffectedServices are the explicit services plus their direct
	// dependencies, in that order.
	AffectedServices []string         `json:"affected_services"`
	Context          ExecutionContext `json:"context"`
	// Defaults are the parameters injected by the derived dimensions.
	Defaults map[string]any `json:"defaults"`
	// Parameters are the intent parameters overlaid with Defaults.
	Parameters  map[string]any `json:"parameters"`
	Suggestions []string       `json:"suggestions"`
	Confidence  float64        `json:"confidence"`
	Fallback    bool           `json:"fallback,omitempty"`
}
