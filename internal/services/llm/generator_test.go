package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedInvoker replays a fixed sequence of responses and records every call.
type scriptedInvoker struct {
	responses []string
	err       error
	calls     int
	models    []string
}

func (s *scriptedInvoker) Invoke(_ context.Context, model, _ string) (string, error) {
	s.calls++
	s.models = append(s.models, model)
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

type countingMetrics struct {
	mu       sync.Mutex
	counts   map[string]int
	segments []string
}

func (m *countingMetrics) Segment(name string, fn func() error) error {
	m.mu.Lock()
	m.segments = append(m.segments, name)
	m.mu.Unlock()
	return fn()
}

func (m *countingMetrics) Count(category, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[category+"."+name]++
}

func basicCfg() InvocationConfig {
	return InvocationConfig{Capability: CapabilityBasic, Budget: BudgetFree}
}

func TestGenerate_SucceedsWithinRetryBudget(t *testing.T) {
	// Two garbage replies, then a valid one; budget of three attempts.
	inv := &scriptedInvoker{responses: []string{"nope", "still nope", `["ok"]`}}
	g := NewGenerator(inv, nil, GeneratorConfig{MaxAttempts: 3})

	got, err := Generate(context.Background(), g, basicCfg(), "p", Array[string]())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, got)
	assert.Equal(t, 3, inv.calls)
}

func TestGenerate_ExhaustsRetryBudget(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"nope", "nope", "nope", `["ok"]`}}
	metrics := &countingMetrics{}
	g := NewGenerator(inv, metrics, GeneratorConfig{MaxAttempts: 3})

	_, err := Generate(context.Background(), g, basicCfg(), "p", Array[string]())
	var pe *ParsingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, NoCandidateFound, pe.Reason)
	assert.Equal(t, 3, inv.calls)
	assert.Equal(t, 2, metrics.counts["llm.parse_retry"])
	assert.Equal(t, 1, metrics.counts["llm.parse_exhausted"])
	assert.Equal(t, []string{"llm.generate"}, metrics.segments)
}

func TestGenerate_SchemaFailureIsRetryable(t *testing.T) {
	type doc struct {
		A string `json:"a"`
	}
	inv := &scriptedInvoker{responses: []string{`{"a":123}`, `{"a":"ok"}`}}
	g := NewGenerator(inv, nil, GeneratorConfig{MaxAttempts: 3})

	got, err := Generate(context.Background(), g, basicCfg(), "p", Object[doc]())
	require.NoError(t, err)
	assert.Equal(t, "ok", got.A)
	assert.Equal(t, 2, inv.calls)
}

func TestGenerate_TransportErrorShortCircuits(t *testing.T) {
	inv := &scriptedInvoker{err: errors.New("connection refused")}
	metrics := &countingMetrics{}
	g := NewGenerator(inv, metrics, GeneratorConfig{MaxAttempts: 3})

	_, err := Generate(context.Background(), g, basicCfg(), "p", Array[string]())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, 1, metrics.counts["llm.transport_error"])
}

func TestGenerate_EmptyResponseIsFatal(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"   "}}
	g := NewGenerator(inv, nil, GeneratorConfig{MaxAttempts: 3})

	_, err := Generate(context.Background(), g, basicCfg(), "p", Array[string]())
	require.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 1, inv.calls)
}

func TestGenerate_SingleAttemptBudget(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"nope"}}
	g := NewGenerator(inv, nil, GeneratorConfig{MaxAttempts: 1})

	_, err := Generate(context.Background(), g, basicCfg(), "p", Array[string]())
	var pe *ParsingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, inv.calls)
}

func TestGenerate_InvocationCountTracksFailures(t *testing.T) {
	// k parse failures before a valid reply cost min(k+1, maxAttempts) calls.
	tests := []struct {
		name      string
		responses []string
		wantCalls int
		wantErr   bool
	}{
		{"clean first try", []string{`["ok"]`}, 1, false},
		{"one failure", []string{"nope", `["ok"]`}, 2, false},
		{"two failures", []string{"nope", "nope", `["ok"]`}, 3, false},
		{"budget caps calls", []string{"nope", "nope", "nope", `["ok"]`}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &scriptedInvoker{responses: tt.responses}
			g := NewGenerator(inv, nil, GeneratorConfig{MaxAttempts: 3})

			_, err := Generate(context.Background(), g, basicCfg(), "p", Array[string]())
			if tt.wantErr {
				var pe *ParsingError
				require.ErrorAs(t, err, &pe)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, inv.calls)
		})
	}
}

func TestGenerate_UsesSelectedModel(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{`["ok"]`}}
	g := NewGenerator(inv, nil, GeneratorConfig{})

	cfg := InvocationConfig{Capability: CapabilityReasoning, Budget: BudgetPaid}
	_, err := Generate(context.Background(), g, cfg, "p", Array[string]())
	require.NoError(t, err)
	assert.Equal(t, []string{modelReasoning}, inv.models)
}

func TestSelectModel(t *testing.T) {
	tests := []struct {
		capability Capability
		budget     Budget
		want       string
	}{
		{CapabilityBasic, BudgetFree, modelEconomical},
		{CapabilityReasoning, BudgetFree, modelEconomical},
		{CapabilityBasic, BudgetPaid, modelEconomical},
		{CapabilityReasoning, BudgetPaid, modelReasoning},
		{"", "", defaultModel},
		{"weird", "unknown", defaultModel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectModel(tt.capability, tt.budget),
			"capability=%s budget=%s", tt.capability, tt.budget)
	}
}

func TestIntervalLimiter_SpacesConcurrentCallers(t *testing.T) {
	const interval = 30 * time.Millisecond
	l := NewIntervalLimiter(interval)

	start := time.Now()
	errs := make(chan error, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Wait(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// First caller passes immediately, the others queue at interval spacing.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

func TestIntervalLimiter_CancelledContext(t *testing.T) {
	l := NewIntervalLimiter(time.Minute)
	require.NoError(t, l.Wait(context.Background())) // first slot is free

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
