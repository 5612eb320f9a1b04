package news

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbrief/internal/repo"
	"newsbrief/internal/services/llm"
)

// fakeRepo keeps articles in memory for service tests.
type fakeRepo struct {
	articles  map[string]repo.Article
	summaries map[string]repo.ArticleSummary
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		articles:  make(map[string]repo.Article),
		summaries: make(map[string]repo.ArticleSummary),
	}
}

func (f *fakeRepo) CreateArticle(_ context.Context, arg repo.CreateArticleParams) (repo.Article, error) {
	a := repo.Article{
		ID:              arg.ID,
		Title:           arg.Title,
		Description:     arg.Description,
		URL:             arg.URL,
		PublicationDate: arg.PublicationDate,
		SourceName:      arg.SourceName,
		Category:        arg.Category,
		RelevanceScore:  arg.RelevanceScore,
	}
	f.articles[a.ID] = a
	return a, nil
}

func (f *fakeRepo) GetArticleByID(_ context.Context, id string) (repo.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return repo.Article{}, fmt.Errorf("article %s: %w", id, repo.ErrNotFound)
	}
	return a, nil
}

func (f *fakeRepo) GetArticlesByCategory(_ context.Context, _ repo.GetArticlesByCategoryParams) ([]repo.Article, error) {
	return nil, nil
}

func (f *fakeRepo) GetArticlesBySource(_ context.Context, _ repo.GetArticlesBySourceParams) ([]repo.Article, error) {
	return nil, nil
}

func (f *fakeRepo) GetArticlesByScore(_ context.Context, _ repo.GetArticlesByScoreParams) ([]repo.Article, error) {
	return nil, nil
}

func (f *fakeRepo) SearchArticles(_ context.Context, _ repo.SearchArticlesParams) ([]repo.SearchArticlesRow, error) {
	return nil, nil
}

func (f *fakeRepo) CreateArticleSummary(_ context.Context, arg repo.CreateArticleSummaryParams) (repo.ArticleSummary, error) {
	s := repo.ArticleSummary{
		ArticleID:   arg.ArticleID,
		LLMSummary:  arg.LLMSummary,
		Model:       arg.Model,
		GeneratedAt: time.Now(),
	}
	f.summaries[arg.ArticleID] = s
	return s, nil
}

func (f *fakeRepo) GetArticleSummary(_ context.Context, articleID string) (repo.ArticleSummary, error) {
	s, ok := f.summaries[articleID]
	if !ok {
		return repo.ArticleSummary{}, fmt.Errorf("summary for %s: %w", articleID, repo.ErrNotFound)
	}
	return s, nil
}

func (f *fakeRepo) GetArticlesWithoutSummary(_ context.Context, limit int32) ([]repo.Article, error) {
	var out []repo.Article
	for id, a := range f.articles {
		if _, ok := f.summaries[id]; !ok {
			out = append(out, a)
		}
		if len(out) >= int(limit) {
			break
		}
	}
	return out, nil
}

// fakeLLM returns canned drafts and summaries.
type fakeLLM struct {
	drafts     []llm.ArticleDraft
	digestErr  error
	summary    string
	summaryErr error
	calls      int
}

func (f *fakeLLM) GenerateDigest(_ context.Context, _, _ string) ([]llm.ArticleDraft, error) {
	return f.drafts, f.digestErr
}

func (f *fakeLLM) Summarize(_ context.Context, _, _, _, _ string) (string, error) {
	f.calls++
	return f.summary, f.summaryErr
}

func (f *fakeLLM) Model() string { return "test-model" }

func TestGenerateDigest_StoresValidDrafts(t *testing.T) {
	r := newFakeRepo()
	client := &fakeLLM{drafts: []llm.ArticleDraft{
		{Title: "Fed holds rates", Description: "No change expected.", SourceName: "Reuters",
			Category: []string{"Business"}, RelevanceScore: 0.8},
		{Title: "", Description: "draft without a title"},
		{Title: "Flood warnings", RelevanceScore: 1.7},
	}}
	svc := NewService(r, nil, client)

	resp, err := svc.GenerateDigest(context.Background(), "Reuters", "raw source text")
	require.NoError(t, err)

	// The untitled draft is dropped, the out-of-range score clamped.
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Len(t, r.articles, 2)
	assert.Equal(t, "Fed holds rates", resp.Articles[0].Title)
	assert.Equal(t, 1.0, resp.Articles[1].RelevanceScore)
	// A draft without a source inherits the digest's source.
	assert.Equal(t, "Reuters", resp.Articles[1].SourceName)
}

func TestGenerateDigest_PropagatesPipelineFailure(t *testing.T) {
	client := &fakeLLM{digestErr: &llm.ParsingError{Reason: llm.NoCandidateFound}}
	svc := NewService(newFakeRepo(), nil, client)

	_, err := svc.GenerateDigest(context.Background(), "Reuters", "text")
	var pe *llm.ParsingError
	assert.ErrorAs(t, err, &pe)
}

func TestGenerateDigest_RejectsEmptyText(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, &fakeLLM{})
	_, err := svc.GenerateDigest(context.Background(), "Reuters", "   ")
	assert.Error(t, err)
}

func TestEnrichSummaries(t *testing.T) {
	client := &fakeLLM{summary: "Short summary."}
	svc := NewService(newFakeRepo(), nil, client)

	articles := []ArticleDTO{
		{ID: "a1", Title: "One", PublicationDate: time.Now()},
		{ID: "a2", Title: "Two", PublicationDate: time.Now()},
	}
	out := svc.EnrichSummaries(context.Background(), articles)
	require.Len(t, out, 2)
	for _, dto := range out {
		require.NotNil(t, dto.LLMSummary)
		assert.Equal(t, "Short summary.", *dto.LLMSummary)
	}
	assert.Equal(t, 2, client.calls)
}

func TestEnrichSummaries_ToleratesFailures(t *testing.T) {
	client := &fakeLLM{summaryErr: errors.New("boom")}
	svc := NewService(newFakeRepo(), nil, client)

	out := svc.EnrichSummaries(context.Background(), []ArticleDTO{
		{ID: "a1", Title: "One", PublicationDate: time.Now()},
	})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].LLMSummary)
}

func TestGetArticle_AttachesSummary(t *testing.T) {
	r := newFakeRepo()
	svc := NewService(r, nil, &fakeLLM{})

	ctx := context.Background()
	_, err := r.CreateArticle(ctx, repo.CreateArticleParams{ID: "a1", Title: "One"})
	require.NoError(t, err)
	_, err = r.CreateArticleSummary(ctx, repo.CreateArticleSummaryParams{
		ArticleID: "a1", LLMSummary: "Stored summary.", Model: "test-model",
	})
	require.NoError(t, err)

	dto, err := svc.GetArticle(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, dto.LLMSummary)
	assert.Equal(t, "Stored summary.", *dto.LLMSummary)

	_, err = svc.GetArticle(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestSummaryWorker_BackfillsMissingSummaries(t *testing.T) {
	r := newFakeRepo()
	client := &fakeLLM{summary: "Backfilled."}
	w := NewSummaryWorker(r, nil, client, 10)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := r.CreateArticle(ctx, repo.CreateArticleParams{
			ID: fmt.Sprintf("a%d", i), Title: fmt.Sprintf("Article %d", i),
		})
		require.NoError(t, err)
	}
	_, err := r.CreateArticleSummary(ctx, repo.CreateArticleSummaryParams{
		ArticleID: "a0", LLMSummary: "existing", Model: "test-model",
	})
	require.NoError(t, err)

	w.runOnce(ctx)

	assert.Len(t, r.summaries, 3)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, "test-model", r.summaries["a1"].Model)
}
