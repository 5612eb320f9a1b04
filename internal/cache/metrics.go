package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics implements the LLM pipeline's observability sink over Redis
// counters. Every failure here is swallowed after a debug log: losing a data
// point must never fail a generation request.
type Metrics struct {
	cache *RedisCache
}

func NewMetrics(cache *RedisCache) *Metrics {
	return &Metrics{cache: cache}
}

// Segment times fn and logs the duration; the returned error is fn's own.
func (m *Metrics) Segment(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	log.Debug().Str("segment", name).Dur("duration", time.Since(start)).
		Bool("ok", err == nil).Msg("Segment finished")
	return err
}

// Count bumps a named counter.
func (m *Metrics) Count(category, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := m.cache.Incr(ctx, MetricKey(category, name)); err != nil {
		log.Debug().Err(err).Str("category", category).Str("name", name).
			Msg("Failed to record metric")
	}
}
