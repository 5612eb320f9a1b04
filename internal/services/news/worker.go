package news

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"newsbrief/internal/cache"
	"newsbrief/internal/repo"
	"newsbrief/internal/services/llm"
)

// SummaryWorker backfills summaries for articles that do not have one yet,
// on a fixed interval. Summaries go through the same validated generation
// pipeline as digests, so a model that answers with garbage never reaches
// the store.
type SummaryWorker struct {
	repo      repo.Repository
	cache     *cache.RedisCache
	llm       llm.Client
	batchSize int32
	ticker    *time.Ticker
	done      chan struct{}
}

func NewSummaryWorker(repo repo.Repository, cache *cache.RedisCache, llm llm.Client, batchSize int32) *SummaryWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SummaryWorker{
		repo:      repo,
		cache:     cache,
		llm:       llm,
		batchSize: batchSize,
		done:      make(chan struct{}),
	}
}

// Start begins the background backfill loop.
func (w *SummaryWorker) Start(ctx context.Context, interval time.Duration) {
	w.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-w.ticker.C:
				w.runOnce(ctx)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Summary worker started")
}

func (w *SummaryWorker) Stop() {
	if w.ticker != nil {
		w.ticker.Stop()
	}
	close(w.done)
}

// runOnce processes one batch. Per-article failures are logged and skipped so
// a single bad generation does not stall the backfill.
func (w *SummaryWorker) runOnce(ctx context.Context) {
	articles, err := w.repo.GetArticlesWithoutSummary(ctx, w.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list articles without summary")
		return
	}
	if len(articles) == 0 {
		return
	}

	generated := 0
	for _, article := range articles {
		description := ""
		if article.Description != nil {
			description = *article.Description
		}
		summary, err := w.llm.Summarize(ctx, article.Title, description,
			article.SourceName, article.PublicationDate.Format(time.RFC3339))
		if err != nil {
			log.Warn().Err(err).Str("article_id", article.ID).
				Msg("Summary backfill failed for article")
			continue
		}

		if _, err := w.repo.CreateArticleSummary(ctx, repo.CreateArticleSummaryParams{
			ArticleID:  article.ID,
			LLMSummary: summary,
			Model:      w.llm.Model(),
		}); err != nil {
			log.Error().Err(err).Str("article_id", article.ID).
				Msg("Failed to store summary")
			continue
		}
		if w.cache != nil {
			if err := w.cache.Set(ctx, cache.SummaryKey(article.ID), summary, cache.SummaryTTL); err != nil {
				log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to cache summary")
			}
		}
		generated++
	}

	log.Info().Int("batch", len(articles)).Int("generated", generated).
		Msg("Summary backfill pass complete")
}
