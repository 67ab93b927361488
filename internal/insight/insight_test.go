package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleRequest() Request {
	return Request{
		Input:       "run chaos test on orders",
		Intent:      "RUN_TESTS",
		ActionType:  "RUN_CHAOS_TEST",
		TestType:    "CHAOS_TEST",
		ServiceName: "order-service",
		Risk:        "HIGH",
		Duration:    "15 minutes",
		Confidence:  0.8857,
		Suggestions: []string{"Prepare rollback procedures"},
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in       string
		expected Mode
		wantErr  bool
	}{
		{"off", ModeOff, false},
		{"", ModeOff, false},
		{"ALWAYS", ModeAlways, false},
		{" low_confidence ", ModeLowConfidence, false},
		{"sometimes", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestMode_Applies(t *testing.T) {
	assert.False(t, ModeOff.Applies(false))
	assert.True(t, ModeAlways.Applies(true))
	assert.True(t, ModeLowConfidence.Applies(false))
	assert.False(t, ModeLowConfidence.Applies(true))
}

func TestPrompt(t *testing.T) {
	prompt, err := Prompt(sampleRequest())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Command: run chaos test on orders")
	assert.Contains(t, prompt, "Action: RUN_CHAOS_TEST (CHAOS_TEST) on order-service")
	assert.Contains(t, prompt, "Confidence: 0.89")
	assert.Contains(t, prompt, "- Prepare rollback procedures")
}

func TestService_Start(t *testing.T) {
	svc := NewService(NewMockProvider().WithResponse("  Watch the payment gateway.  "))

	res := svc.Start(context.Background(), sampleRequest()).Wait(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, "Watch the payment gateway.", res.Text)
	assert.Equal(t, "mock", res.Provider)
	assert.Empty(t, res.Error)
}

func TestService_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		provider *MockProvider
		timeout  time.Duration
		check    func(t *testing.T, err error)
	}{
		{
			name:     "unavailable",
			provider: NewMockProvider().WithAvailable(false),
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnavailable) },
		},
		{
			name:     "provider error",
			provider: NewMockProvider().WithError(boom),
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, boom) },
		},
		{
			name:     "empty reply",
			provider: NewMockProvider().WithResponse("   "),
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmpty) },
		},
		{
			name:     "timeout",
			provider: NewMockProvider().WithDelay(time.Second),
			timeout:  20 * time.Millisecond,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, context.DeadlineExceeded) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.provider, WithTimeout(tt.timeout))

			res := svc.Start(context.Background(), sampleRequest()).Wait(context.Background())

			require.Error(t, res.Err)
			assert.Empty(t, res.Text)
			assert.Equal(t, res.Err.Error(), res.Error)
			tt.check(t, res.Err)
		})
	}
}

func TestService_NilProvider(t *testing.T) {
	res := NewService(nil).Start(context.Background(), sampleRequest()).Wait(context.Background())
	assert.ErrorIs(t, res.Err, ErrUnavailable)
}

func TestTask_WaitGivesUpWithCaller(t *testing.T) {
	svc := NewService(NewMockProvider().WithDelay(time.Second), WithTimeout(200*time.Millisecond))
	task := svc.Start(context.Background(), sampleRequest())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := task.Wait(ctx)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	// the task still ends on its own time box
	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("insight task did not finish")
	}
}

func TestService_CallerCancellationStopsTask(t *testing.T) {
	svc := NewService(NewMockProvider().WithDelay(time.Second), WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	task := svc.Start(ctx, sampleRequest())
	cancel()

	res := task.Wait(context.Background())
	assert.ErrorIs(t, res.Err, context.Canceled)
}
