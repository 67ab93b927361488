// Package execution is the boundary to whatever runs an ExecutableAction.
// Only a dry-run dispatcher ships here; it lays out the steps a real runner
// would take without touching any service.
package execution

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/enrich"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/mapper"
)

// ErrNotExecutable is returned for UNKNOWN and ERROR actions.
var ErrNotExecutable = errors.New("action is not executable")

// StepKind groups plan steps.
type StepKind string

const (
	StepPreCheck StepKind = "PRE_CHECK"
	StepExecute  StepKind = "EXECUTE"
	StepMonitor  StepKind = "MONITOR"
	StepRollback StepKind = "ROLLBACK"
)

// Step is one ordered unit of a plan.
type Step struct {
	Order       int      `json:"order"`
	Kind        StepKind `json:"kind"`
	Description string   `json:"description"`
	// Critical steps abort the plan when they fail.
	Critical bool `json:"critical"`
}

// Plan is the ordered list of steps for one action.
type Plan struct {
	ID                string         `json:"id"`
	ActionType        string         `json:"actionType"`
	TestType          string         `json:"testType"`
	ServiceName       string         `json:"serviceName"`
	Priority          string         `json:"priority"`
	EstimatedDuration string         `json:"estimatedDuration"`
	Parameters        map[string]any `json:"parameters"`
	Steps             []Step         `json:"steps"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// Dispatcher accepts an action and runs, or plans, the operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, action mapper.ExecutableAction) (*Plan, error)
}

// DryRun builds plans without executing anything.
type DryRun struct{}

// NewDryRun creates a dry-run dispatcher.
func NewDryRun() *DryRun {
	return &DryRun{}
}

// Dispatch implements Dispatcher.
func (d *DryRun) Dispatch(ctx context.Context, action mapper.ExecutableAction) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch action.ActionType {
	case mapper.ActionUnknown, mapper.ActionError, "":
		return nil, fmt.Errorf("%w: %s", ErrNotExecutable, action.ActionType)
	}

	plan := &Plan{
		ID:                uuid.NewString(),
		ActionType:        action.ActionType,
		TestType:          action.TestType,
		ServiceName:       action.ServiceName,
		Priority:          action.Priority,
		EstimatedDuration: action.EstimatedDuration,
		Parameters:        maps.Clone(action.Parameters),
		CreatedAt:         time.Now().UTC(),
	}

	target := targetName(action.ServiceName)
	for _, desc := range preChecks(action, target) {
		plan.add(StepPreCheck, desc, true)
	}
	plan.add(StepExecute, action.Description, true)
	if flag(action.Parameters, enrich.ParamMonitoringEnabled) {
		plan.add(StepMonitor, fmt.Sprintf("Monitor latency and error rate of %s", target), false)
	}
	if flag(action.Parameters, enrich.ParamAlertingEnabled) {
		plan.add(StepMonitor, fmt.Sprintf("Alert on threshold breaches for %s", target), false)
	}
	if flag(action.Parameters, enrich.ParamRollbackEnabled) {
		plan.add(StepRollback, fmt.Sprintf("Restore %s to its pre-test state", target), true)
	}

	log.Debug().
		Str("plan", plan.ID).
		Str("action", plan.ActionType).
		Int("steps", len(plan.Steps)).
		Msg("Dry-run plan built")

	return plan, nil
}

func (p *Plan) add(kind StepKind, desc string, critical bool) {
	p.Steps = append(p.Steps, Step{
		Order:       len(p.Steps) + 1,
		Kind:        kind,
		Description: desc,
		Critical:    critical,
	})
}

func preChecks(action mapper.ExecutableAction, target string) []string {
	checks := []string{fmt.Sprintf("Check reachability of %s", target)}
	switch action.ActionType {
	case mapper.ActionRunChaosTest:
		checks = append(checks,
			"Confirm a rollback procedure is in place",
			"Notify the on-call team of fault injection",
		)
	case mapper.ActionRunPerformanceTest:
		checks = append(checks, "Reserve load generators and a performance baseline")
	case mapper.ActionAnalyzeFailures, mapper.ActionOptimizeTests:
		checks = append(checks, fmt.Sprintf("Collect recent test results for %s", target))
	case mapper.ActionGenerateTests:
		checks = append(checks, fmt.Sprintf("Load the API contract of %s", target))
	}
	return checks
}

func targetName(service string) string {
	if service == lexicon.AllServices {
		return "all services"
	}
	return service
}

func flag(params map[string]any, key string) bool {
	v, _ := params[key].(bool)
	return v
}

var _ Dispatcher = (*DryRun)(nil)
