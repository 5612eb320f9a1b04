package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	}
}

// RateLimit applies a per-client token bucket. The bucket lives in process
// memory; a multi-instance deployment needs a shared store behind this.
func RateLimit(next http.Handler) http.Handler {
	config := DefaultRateLimitConfig()
	limiter := NewTokenBucketLimiter(config.RequestsPerMinute, config.BurstSize)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := clientIP(r)

		if !limiter.Allow(clientIP) {
			log.Warn().
				Str("client_ip", clientIP).
				Str("url", r.URL.String()).
				Msg("Rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)

			errorResponse := map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "RATE_LIMIT",
					"message": "Rate limit exceeded. Please try again later.",
				},
			}
			if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the real client IP, preferring proxy headers.
func clientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		if i := strings.IndexByte(forwardedFor, ','); i > 0 {
			return forwardedFor[:i]
		}
		return forwardedFor
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// TokenBucketLimiter is a per-client in-memory token bucket. Handlers call
// Allow concurrently, so all bucket state is guarded by the mutex.
type TokenBucketLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	burstSize         int
	clients           map[string]*clientBucket
}

type clientBucket struct {
	tokens     float64
	lastRefill time.Time
}

func NewTokenBucketLimiter(requestsPerMinute, burstSize int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		requestsPerMinute: requestsPerMinute,
		burstSize:         burstSize,
		clients:           make(map[string]*clientBucket),
	}
}

func (rl *TokenBucketLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, exists := rl.clients[clientIP]
	if !exists {
		bucket = &clientBucket{
			tokens:     float64(rl.burstSize),
			lastRefill: now,
		}
		rl.clients[clientIP] = bucket
	}

	// Refill fractionally so short bursts do not round refills down to zero.
	elapsed := now.Sub(bucket.lastRefill)
	bucket.tokens += elapsed.Minutes() * float64(rl.requestsPerMinute)
	if bucket.tokens > float64(rl.burstSize) {
		bucket.tokens = float64(rl.burstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}
