package cache

import (
	"crypto/sha1"
	"fmt"
	"time"
)

const (
	ArticleTTL  = 6 * time.Hour
	SummaryTTL  = 7 * 24 * time.Hour
	SearchTTL   = 90 * time.Second
	CategoryTTL = 2 * time.Hour
	SourceTTL   = 2 * time.Hour
	ScoreTTL    = 2 * time.Hour
)

// ArticleKey generates the Redis key for an article
func ArticleKey(id string) string {
	return fmt.Sprintf("news:article:%s", id)
}

// SummaryKey generates the Redis key for an article summary
func SummaryKey(id string) string {
	return fmt.Sprintf("news:summary:%s", id)
}

// SearchKey generates the Redis key for cached search results
func SearchKey(query string, limit int) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("%s|%d", query, limit)))
	return fmt.Sprintf("cache:v1:search:%x", hash)
}

// CategoryKey generates the Redis key for cached category results
func CategoryKey(name string, limit int) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("category:%s:%d", name, limit)))
	return fmt.Sprintf("cache:v1:category:%x", hash)
}

// SourceKey generates the Redis key for cached source results
func SourceKey(name string, limit int) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("source:%s:%d", name, limit)))
	return fmt.Sprintf("cache:v1:source:%x", hash)
}

// ScoreKey generates the Redis key for cached minimum-score results
func ScoreKey(min float64, limit int) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("score:%g:%d", min, limit)))
	return fmt.Sprintf("cache:v1:score:%x", hash)
}

// MetricKey generates the Redis key for a pipeline counter
func MetricKey(category, name string) string {
	return fmt.Sprintf("metrics:%s:%s", category, name)
}
