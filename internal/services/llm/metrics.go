package llm

// Metrics is the observability sink for the generation pipeline. Segment
// wraps an operation for timing; Count bumps a named counter. Implementations
// must swallow their own failures: a broken sink may lose data points but can
// never fail a generation request, which is why Count returns nothing and
// Segment only propagates fn's own error.
type Metrics interface {
	Segment(name string, fn func() error) error
	Count(category, name string)
}

type nopMetrics struct{}

func (nopMetrics) Segment(_ string, fn func() error) error { return fn() }
func (nopMetrics) Count(_, _ string)                       {}

// NopMetrics returns a sink that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
