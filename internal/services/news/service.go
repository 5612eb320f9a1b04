package news

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"newsbrief/internal/cache"
	"newsbrief/internal/repo"
	"newsbrief/internal/services/llm"
)

const enrichConcurrency = 4

// Service turns raw source text into stored articles via the LLM digest
// pipeline and serves article queries with Redis caching in front of the
// repository.
type Service struct {
	repo  repo.Repository
	cache *cache.RedisCache
	llm   llm.Client
}

func NewService(repo repo.Repository, cache *cache.RedisCache, llm llm.Client) *Service {
	return &Service{repo: repo, cache: cache, llm: llm}
}

// GenerateDigest runs the structured-extraction pipeline over the source text
// and persists the resulting drafts. Drafts with an empty title are dropped;
// scores are clamped into [0, 1].
func (s *Service) GenerateDigest(ctx context.Context, sourceName, text string) (*DigestResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("source text is empty")
	}
	if sourceName == "" {
		sourceName = "unknown"
	}

	drafts, err := s.llm.GenerateDigest(ctx, sourceName, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest: %w", err)
	}

	articles := make([]ArticleDTO, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			log.Warn().Str("source", sourceName).Msg("Dropping draft without title")
			continue
		}
		name := draft.SourceName
		if name == "" {
			name = sourceName
		}
		var description *string
		if draft.Description != "" {
			d := draft.Description
			description = &d
		}
		stored, err := s.repo.CreateArticle(ctx, repo.CreateArticleParams{
			ID:              newArticleID(),
			Title:           draft.Title,
			Description:     description,
			URL:             draft.URL,
			PublicationDate: time.Now().UTC(),
			SourceName:      name,
			Category:        draft.Category,
			RelevanceScore:  clampScore(draft.RelevanceScore),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store article: %w", err)
		}
		s.cacheArticle(ctx, stored)
		articles = append(articles, toDTO(stored))
	}

	log.Info().Str("source", sourceName).Int("drafts", len(drafts)).
		Int("stored", len(articles)).Msg("Digest generated")

	return &DigestResponse{
		Articles: articles,
		Meta:     MetaInfo{Total: len(articles), SourceName: sourceName, Strategy: "digest"},
	}, nil
}

// GetArticle returns one article, with its summary attached when one exists.
func (s *Service) GetArticle(ctx context.Context, id string) (*ArticleDTO, error) {
	article, err := s.repo.GetArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(article)
	if summary, err := s.repo.GetArticleSummary(ctx, id); err == nil {
		dto.LLMSummary = &summary.LLMSummary
	} else if !errors.Is(err, repo.ErrNotFound) {
		log.Warn().Err(err).Str("article_id", id).Msg("Failed to load summary")
	}
	return &dto, nil
}

func (s *Service) GetByCategory(ctx context.Context, name string, limit int) ([]ArticleDTO, error) {
	limit = normalizeLimit(limit)
	key := cache.CategoryKey(name, limit)
	if dtos, ok := s.cachedList(ctx, key); ok {
		return dtos, nil
	}

	articles, err := s.repo.GetArticlesByCategory(ctx, repo.GetArticlesByCategoryParams{
		Name:  name,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve articles: %w", err)
	}
	dtos := toDTOs(articles)
	s.cacheList(ctx, key, dtos, cache.CategoryTTL)
	return dtos, nil
}

func (s *Service) GetBySource(ctx context.Context, name string, limit int) ([]ArticleDTO, error) {
	limit = normalizeLimit(limit)
	key := cache.SourceKey(name, limit)
	if dtos, ok := s.cachedList(ctx, key); ok {
		return dtos, nil
	}

	articles, err := s.repo.GetArticlesBySource(ctx, repo.GetArticlesBySourceParams{
		Name:  name,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve articles: %w", err)
	}
	dtos := toDTOs(articles)
	s.cacheList(ctx, key, dtos, cache.SourceTTL)
	return dtos, nil
}

func (s *Service) GetByScore(ctx context.Context, min float64, limit int) ([]ArticleDTO, error) {
	limit = normalizeLimit(limit)
	key := cache.ScoreKey(min, limit)
	if dtos, ok := s.cachedList(ctx, key); ok {
		return dtos, nil
	}

	articles, err := s.repo.GetArticlesByScore(ctx, repo.GetArticlesByScoreParams{
		Min:   min,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve articles: %w", err)
	}
	dtos := toDTOs(articles)
	s.cacheList(ctx, key, dtos, cache.ScoreTTL)
	return dtos, nil
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]ArticleDTO, error) {
	limit = normalizeLimit(limit)
	key := cache.SearchKey(query, limit)
	if dtos, ok := s.cachedList(ctx, key); ok {
		return dtos, nil
	}

	rows, err := s.repo.SearchArticles(ctx, repo.SearchArticlesParams{
		Query: query,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	dtos := make([]ArticleDTO, len(rows))
	for i, row := range rows {
		dto := toDTO(row.Article)
		score := row.SearchScore
		dto.SearchScore = &score
		dtos[i] = dto
	}
	s.cacheList(ctx, key, dtos, cache.SearchTTL)
	return dtos, nil
}

// EnrichSummaries attaches LLM summaries to the given articles, generating
// them concurrently. A failed summary leaves its article unsummarized rather
// than failing the batch.
func (s *Service) EnrichSummaries(ctx context.Context, articles []ArticleDTO) []ArticleDTO {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	summaries := make([]string, len(articles))
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			description := ""
			if article.Description != nil {
				description = *article.Description
			}
			summary, err := s.llm.Summarize(ctx, article.Title, description,
				article.SourceName, article.PublicationDate.Format(time.RFC3339))
			if err != nil {
				log.Warn().Err(err).Str("article_id", article.ID).
					Msg("Summary generation failed")
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	_ = g.Wait()

	for i := range articles {
		if summaries[i] != "" {
			articles[i].LLMSummary = &summaries[i]
		}
	}
	return articles
}

func (s *Service) cacheArticle(ctx context.Context, article repo.Article) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ArticleKey(article.ID), article, cache.ArticleTTL); err != nil {
		log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to cache article")
	}
}

func (s *Service) cachedList(ctx context.Context, key string) ([]ArticleDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	var dtos []ArticleDTO
	if err := s.cache.GetJSON(ctx, key, &dtos); err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil, false
	}
	return dtos, true
}

func (s *Service) cacheList(ctx context.Context, key string, dtos []ArticleDTO, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, dtos, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 50 {
		return 50
	}
	return limit
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func newArticleID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("art_%d", time.Now().UnixNano())
	}
	return "art_" + hex.EncodeToString(b)
}

func toDTO(a repo.Article) ArticleDTO {
	return ArticleDTO{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		URL:             a.URL,
		PublicationDate: a.PublicationDate,
		SourceName:      a.SourceName,
		Category:        a.Category,
		RelevanceScore:  a.RelevanceScore,
	}
}

func toDTOs(articles []repo.Article) []ArticleDTO {
	dtos := make([]ArticleDTO, len(articles))
	for i, a := range articles {
		dtos[i] = toDTO(a)
	}
	return dtos
}
