package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Invoker is the model-invocation capability. It must return non-empty text
// on success; the network, authentication and timeouts all live behind it.
type Invoker interface {
	Invoke(ctx context.Context, model, prompt string) (string, error)
}

// GeneratorConfig tunes the retry orchestration. Zero values select the
// defaults: three attempts, no delay between them, no rate limiting.
type GeneratorConfig struct {
	MaxAttempts        int
	RetryDelay         time.Duration
	MinRequestInterval time.Duration
}

const defaultMaxAttempts = 3

// Generator orchestrates one full pass of invoke → parse per attempt and
// retries while attempts remain. It holds no mutable cross-call state except
// the shared rate limiter, so a single instance serves concurrent callers.
type Generator struct {
	invoker     Invoker
	metrics     Metrics
	limiter     *IntervalLimiter
	maxAttempts int
	retryDelay  time.Duration
}

func NewGenerator(invoker Invoker, metrics Metrics, cfg GeneratorConfig) *Generator {
	if metrics == nil {
		metrics = NopMetrics()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	var limiter *IntervalLimiter
	if cfg.MinRequestInterval > 0 {
		limiter = NewIntervalLimiter(cfg.MinRequestInterval)
	}
	return &Generator{
		invoker:     invoker,
		metrics:     metrics,
		limiter:     limiter,
		maxAttempts: maxAttempts,
		retryDelay:  cfg.RetryDelay,
	}
}

// attempt is the orchestrator's state between transitions: the attempt number
// about to run and the last parsing failure seen. A fresh value is passed
// forward on every retry instead of mutating counters in place.
type attempt struct {
	n    int
	last *ParsingError
}

func (a attempt) next() attempt {
	return attempt{n: a.n + 1, last: a.last}
}

// Generate resolves a model from cfg, invokes it with the prompt and parses
// the reply against the schema, retrying on parsing failures up to the
// generator's attempt budget.
//
// Only *ParsingError is retryable; that includes SchemaValidationFailed, so a
// structurally wrong reply gets the same second chance as a garbled one.
// Transport failures and empty responses fail immediately with exactly one
// invocation behind them.
func Generate[T any](ctx context.Context, g *Generator, cfg InvocationConfig, prompt string, schema Schema[T]) (T, error) {
	var out T
	model := SelectModel(cfg.Capability, cfg.Budget)

	err := g.metrics.Segment("llm.generate", func() error {
		for a := (attempt{n: 1}); ; a = a.next() {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}

			text, err := g.invoker.Invoke(ctx, model, prompt)
			if err != nil {
				g.metrics.Count("llm", "transport_error")
				log.Error().Str("model", model).Int("attempt", a.n).Err(err).
					Msg("Model invocation failed")
				return &TransportError{Model: model, cause: err}
			}
			if strings.TrimSpace(text) == "" {
				g.metrics.Count("llm", "empty_response")
				log.Error().Str("model", model).Int("attempt", a.n).
					Msg("Model returned empty response")
				return &TransportError{Model: model, cause: ErrEmptyResponse}
			}

			value, perr := Parse(text, schema)
			if perr == nil {
				if a.n > 1 {
					log.Info().Str("model", model).Int("attempt", a.n).
						Msg("Parsing succeeded after retry")
				}
				out = value
				return nil
			}

			var pe *ParsingError
			if !errors.As(perr, &pe) {
				return perr
			}
			a.last = pe

			if a.n >= g.maxAttempts {
				g.metrics.Count("llm", "parse_exhausted")
				log.Error().Str("model", model).Int("attempts", a.n).
					Str("reason", pe.Reason.String()).Err(pe).
					Msg("Retries exhausted, giving up on model response")
				return pe
			}

			g.metrics.Count("llm", "parse_retry")
			log.Warn().Str("model", model).Int("attempt", a.n).
				Str("reason", pe.Reason.String()).Err(pe).
				Msg("Response parsing failed, retrying")

			if g.retryDelay > 0 {
				timer := time.NewTimer(g.retryDelay)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				}
			}
		}
	})
	return out, err
}
