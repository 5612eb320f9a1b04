package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"newsbrief/internal/repo"
	"newsbrief/internal/services/news"
)

// NewsHandler handles news-related HTTP requests
type NewsHandler struct {
	newsService *news.Service
}

func NewNewsHandler(newsService *news.Service) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// RegisterRoutes registers all news routes
func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/news", func(r chi.Router) {
		r.Post("/digest", h.Digest)
		r.Get("/articles", h.ListArticles)
		r.Get("/articles/{id}", h.GetArticle)
	})
}

// Digest accepts raw source text and runs the structured digest pipeline.
func (h *NewsHandler) Digest(w http.ResponseWriter, r *http.Request) {
	var req news.DigestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, news.ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, news.ErrCodeValidation, "text is required")
		return
	}

	resp, err := h.newsService.GenerateDigest(r.Context(), req.SourceName, req.Text)
	if err != nil {
		log.Error().Err(err).Str("source", req.SourceName).Msg("Digest request failed")
		writeError(w, http.StatusBadGateway, news.ErrCodeInternal, "digest generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListArticles serves article queries by category, source, minimum relevance
// score or full-text search. Exactly one of q, category, source or min_score
// selects the strategy; q wins ties.
func (h *NewsHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 10
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, news.ErrCodeValidation, "limit must be 1-50")
			return
		}
		limit = parsed
	}

	var (
		articles []news.ArticleDTO
		err      error
		strategy string
	)
	switch {
	case q.Get("q") != "":
		strategy = "search"
		articles, err = h.newsService.Search(r.Context(), q.Get("q"), limit)
	case q.Get("category") != "":
		strategy = "category"
		articles, err = h.newsService.GetByCategory(r.Context(), q.Get("category"), limit)
	case q.Get("source") != "":
		strategy = "source"
		articles, err = h.newsService.GetBySource(r.Context(), q.Get("source"), limit)
	case q.Get("min_score") != "":
		minScore, perr := strconv.ParseFloat(q.Get("min_score"), 64)
		if perr != nil || minScore < 0 || minScore > 1 {
			writeError(w, http.StatusBadRequest, news.ErrCodeValidation, "min_score must be 0-1")
			return
		}
		strategy = "score"
		articles, err = h.newsService.GetByScore(r.Context(), minScore, limit)
	default:
		writeError(w, http.StatusBadRequest, news.ErrCodeValidation,
			"one of q, category, source or min_score is required")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("strategy", strategy).Msg("Article query failed")
		writeError(w, http.StatusInternalServerError, news.ErrCodeInternal, "failed to retrieve articles")
		return
	}

	if q.Get("enrich") == "true" {
		articles = h.newsService.EnrichSummaries(r.Context(), articles)
	}

	writeJSON(w, http.StatusOK, news.DigestResponse{
		Articles: articles,
		Meta:     news.MetaInfo{Total: len(articles), Strategy: strategy},
	})
}

// GetArticle serves a single article with its summary when available.
func (h *NewsHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, err := h.newsService.GetArticle(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, news.ErrCodeNotFound, "article not found")
			return
		}
		log.Error().Err(err).Str("article_id", id).Msg("Article lookup failed")
		writeError(w, http.StatusInternalServerError, news.ErrCodeInternal, "failed to retrieve article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, news.NewErrorResponse(code, message))
}
