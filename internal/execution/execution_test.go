package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/enrich"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/mapper"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/pipeline"
)

func kinds(p *Plan) []StepKind {
	out := make([]StepKind, 0, len(p.Steps))
	for _, s := range p.Steps {
		out = append(out, s.Kind)
	}
	return out
}

func TestDryRun_ChaosPlan(t *testing.T) {
	p, err := pipeline.New()
	require.NoError(t, err)
	action := p.Interpret(context.Background(), "run chaos test on orders").Action

	plan, err := NewDryRun().Dispatch(context.Background(), action)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, mapper.ActionRunChaosTest, plan.ActionType)
	assert.Equal(t, []StepKind{
		StepPreCheck, StepPreCheck, StepPreCheck,
		StepExecute,
		StepMonitor, StepMonitor,
		StepRollback,
	}, kinds(plan))
	assert.Equal(t, "Run chaos test for order-service", plan.Steps[3].Description)
	assert.Equal(t, "Restore order-service to its pre-test state", plan.Steps[6].Description)
	for i, s := range plan.Steps {
		assert.Equal(t, i+1, s.Order)
	}
}

func TestDryRun_Flags(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]any
		expected []StepKind
	}{
		{
			name:     "no flags",
			params:   map[string]any{},
			expected: []StepKind{StepPreCheck, StepExecute},
		},
		{
			name:     "monitoring only",
			params:   map[string]any{enrich.ParamMonitoringEnabled: true},
			expected: []StepKind{StepPreCheck, StepExecute, StepMonitor},
		},
		{
			name:     "rollback disabled",
			params:   map[string]any{enrich.ParamRollbackEnabled: false},
			expected: []StepKind{StepPreCheck, StepExecute},
		},
		{
			name:     "non-bool flag ignored",
			params:   map[string]any{enrich.ParamRollbackEnabled: "yes"},
			expected: []StepKind{StepPreCheck, StepExecute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := mapper.ExecutableAction{
				ActionType:  mapper.ActionRunTest,
				TestType:    lexicon.TestUnit,
				ServiceName: lexicon.AllServices,
				Parameters:  tt.params,
				Description: "Run unit test across all services",
			}
			plan, err := NewDryRun().Dispatch(context.Background(), action)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kinds(plan))
			assert.Equal(t, "Check reachability of all services", plan.Steps[0].Description)
		})
	}
}

func TestDryRun_ParametersAreCopied(t *testing.T) {
	action := mapper.ExecutableAction{
		ActionType: mapper.ActionHealthCheck,
		Parameters: map[string]any{"timeout": "30s"},
	}
	plan, err := NewDryRun().Dispatch(context.Background(), action)
	require.NoError(t, err)

	plan.Parameters["timeout"] = "1s"
	assert.Equal(t, "30s", action.Parameters["timeout"])
}

func TestDryRun_NotExecutable(t *testing.T) {
	tests := []struct {
		name   string
		action mapper.ExecutableAction
	}{
		{"unknown", mapper.UnknownAction()},
		{"error", mapper.ErrorAction("boom")},
		{"empty", mapper.ExecutableAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDryRun().Dispatch(context.Background(), tt.action)
			assert.ErrorIs(t, err, ErrNotExecutable)
		})
	}
}

func TestDryRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDryRun().Dispatch(ctx, mapper.ExecutableAction{ActionType: mapper.ActionRunTest})
	assert.ErrorIs(t, err, context.Canceled)
}
