package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT,
	url              TEXT NOT NULL,
	publication_date TIMESTAMPTZ NOT NULL,
	source_name      TEXT NOT NULL,
	category         TEXT[] NOT NULL DEFAULT '{}',
	relevance_score  DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS article_summaries (
	article_id   TEXT PRIMARY KEY REFERENCES articles(id) ON DELETE CASCADE,
	llm_summary  TEXT NOT NULL,
	model        TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_articles_source ON articles (source_name);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles (publication_date DESC);
`

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB connects to Postgres and ensures the schema exists.
func NewDB(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Info().Msg("Database connection established")
	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

type repository struct {
	db *DB
}

func NewRepository(db *DB) Repository {
	return &repository{db: db}
}

const articleColumns = "id, title, description, url, publication_date, source_name, category, relevance_score"

func scanArticle(row pgx.Row) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.URL,
		&a.PublicationDate, &a.SourceName, &a.Category, &a.RelevanceScore)
	return a, err
}

func collectArticles(rows pgx.Rows) ([]Article, error) {
	defer rows.Close()
	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// CreateArticle inserts an article, updating it in place when the id exists.
func (r *repository) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := r.db.pool.QueryRow(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			publication_date = EXCLUDED.publication_date,
			source_name = EXCLUDED.source_name,
			category = EXCLUDED.category,
			relevance_score = EXCLUDED.relevance_score
		RETURNING `+articleColumns,
		arg.ID, arg.Title, arg.Description, arg.URL,
		arg.PublicationDate, arg.SourceName, arg.Category, arg.RelevanceScore)

	a, err := scanArticle(row)
	if err != nil {
		return Article{}, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

func (r *repository) GetArticleByID(ctx context.Context, id string) (Article, error) {
	row := r.db.pool.QueryRow(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE id = $1", id)
	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Article{}, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Article{}, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

func (r *repository) GetArticlesByCategory(ctx context.Context, arg GetArticlesByCategoryParams) ([]Article, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE EXISTS (SELECT 1 FROM unnest(category) c WHERE c ILIKE $1)
		ORDER BY publication_date DESC
		LIMIT $2`, arg.Name, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("articles by category: %w", err)
	}
	return collectArticles(rows)
}

func (r *repository) GetArticlesBySource(ctx context.Context, arg GetArticlesBySourceParams) ([]Article, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE source_name ILIKE $1
		ORDER BY publication_date DESC
		LIMIT $2`, arg.Name, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("articles by source: %w", err)
	}
	return collectArticles(rows)
}

func (r *repository) GetArticlesByScore(ctx context.Context, arg GetArticlesByScoreParams) ([]Article, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE relevance_score >= $1
		ORDER BY relevance_score DESC
		LIMIT $2`, arg.Min, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("articles by score: %w", err)
	}
	return collectArticles(rows)
}

// SearchArticles matches the query against title and description, scoring
// title hits above description hits with a small relevance bonus.
func (r *repository) SearchArticles(ctx context.Context, arg SearchArticlesParams) ([]SearchArticlesRow, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+articleColumns+`,
			(CASE WHEN title ILIKE '%' || $1 || '%' THEN 0.7 ELSE 0 END
			 + CASE WHEN description ILIKE '%' || $1 || '%' THEN 0.3 ELSE 0 END
			 + relevance_score * 0.2) AS search_score
		FROM articles
		WHERE title ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		ORDER BY search_score DESC
		LIMIT $2`, arg.Query, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	var results []SearchArticlesRow
	for rows.Next() {
		var row SearchArticlesRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Description, &row.URL,
			&row.PublicationDate, &row.SourceName, &row.Category,
			&row.RelevanceScore, &row.SearchScore); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func (r *repository) CreateArticleSummary(ctx context.Context, arg CreateArticleSummaryParams) (ArticleSummary, error) {
	var s ArticleSummary
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO article_summaries (article_id, llm_summary, model)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id) DO UPDATE SET
			llm_summary = EXCLUDED.llm_summary,
			model = EXCLUDED.model,
			generated_at = now()
		RETURNING article_id, llm_summary, model, generated_at`,
		arg.ArticleID, arg.LLMSummary, arg.Model).
		Scan(&s.ArticleID, &s.LLMSummary, &s.Model, &s.GeneratedAt)
	if err != nil {
		return ArticleSummary{}, fmt.Errorf("create summary: %w", err)
	}
	return s, nil
}

func (r *repository) GetArticleSummary(ctx context.Context, articleID string) (ArticleSummary, error) {
	var s ArticleSummary
	err := r.db.pool.QueryRow(ctx, `
		SELECT article_id, llm_summary, model, generated_at
		FROM article_summaries WHERE article_id = $1`, articleID).
		Scan(&s.ArticleID, &s.LLMSummary, &s.Model, &s.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ArticleSummary{}, fmt.Errorf("summary for %s: %w", articleID, ErrNotFound)
	}
	if err != nil {
		return ArticleSummary{}, fmt.Errorf("get summary: %w", err)
	}
	return s, nil
}

func (r *repository) GetArticlesWithoutSummary(ctx context.Context, limit int32) ([]Article, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+prefixedArticleColumns("a")+` FROM articles a
		LEFT JOIN article_summaries s ON s.article_id = a.id
		WHERE s.article_id IS NULL
		ORDER BY a.publication_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("articles without summary: %w", err)
	}
	return collectArticles(rows)
}

func prefixedArticleColumns(alias string) string {
	return alias + ".id, " + alias + ".title, " + alias + ".description, " +
		alias + ".url, " + alias + ".publication_date, " + alias + ".source_name, " +
		alias + ".category, " + alias + ".relevance_score"
}
