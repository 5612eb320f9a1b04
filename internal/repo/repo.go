package repo

import (
	"context"
	"time"
)

// Article represents a news article
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	URL             string    `json:"url"`
	PublicationDate time.Time `json:"publication_date"`
	SourceName      string    `json:"source_name"`
	Category        []string  `json:"category"`
	RelevanceScore  float64   `json:"relevance_score"`
}

// ArticleSummary represents an LLM-generated article summary
type ArticleSummary struct {
	ArticleID   string    `json:"article_id"`
	LLMSummary  string    `json:"llm_summary"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SearchArticlesRow is an article with its computed search score
type SearchArticlesRow struct {
	Article
	SearchScore float64 `json:"search_score"`
}

// Parameter structs for queries
type CreateArticleParams struct {
	ID              string
	Title           string
	Description     *string
	URL             string
	PublicationDate time.Time
	SourceName      string
	Category        []string
	RelevanceScore  float64
}

type GetArticlesByCategoryParams struct {
	Name  string
	Limit int32
}

type GetArticlesBySourceParams struct {
	Name  string
	Limit int32
}

type GetArticlesByScoreParams struct {
	Min   float64
	Limit int32
}

type SearchArticlesParams struct {
	Query string
	Limit int32
}

type CreateArticleSummaryParams struct {
	ArticleID  string
	LLMSummary string
	Model      string
}

// Repository interface for database operations
type Repository interface {
	CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error)
	GetArticleByID(ctx context.Context, id string) (Article, error)
	GetArticlesByCategory(ctx context.Context, arg GetArticlesByCategoryParams) ([]Article, error)
	GetArticlesBySource(ctx context.Context, arg GetArticlesBySourceParams) ([]Article, error)
	GetArticlesByScore(ctx context.Context, arg GetArticlesByScoreParams) ([]Article, error)
	SearchArticles(ctx context.Context, arg SearchArticlesParams) ([]SearchArticlesRow, error)
	CreateArticleSummary(ctx context.Context, arg CreateArticleSummaryParams) (ArticleSummary, error)
	GetArticleSummary(ctx context.Context, articleID string) (ArticleSummary, error)
	GetArticlesWithoutSummary(ctx context.Context, limit int32) ([]Article, error)
}
