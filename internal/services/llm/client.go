package llm

import (
	"context"
)

// ArticleDraft is the structured article shape the model is asked to produce
// from raw source text. Drafts are untrusted until they have passed schema
// validation inside Generate.
type ArticleDraft struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	SourceName     string   `json:"source_name"`
	Category       []string `json:"category"`
	RelevanceScore float64  `json:"relevance_score"`
}

// Client is what the news service sees of the LLM layer.
type Client interface {
	// GenerateDigest turns raw third-party news text into structured article drafts.
	GenerateDigest(ctx context.Context, sourceName, text string) ([]ArticleDraft, error)

	// Summarize produces a 2-3 sentence summary of an article.
	Summarize(ctx context.Context, title, description, sourceName, publicationDate string) (string, error)

	// Model reports which model identifier this client's configuration resolves to.
	Model() string
}

// StructuredClient implements Client on top of the retry orchestrator. The
// digest path validates against an array schema, the summary path against a
// plain string schema.
type StructuredClient struct {
	gen *Generator
	cfg InvocationConfig
}

func NewStructuredClient(gen *Generator, cfg InvocationConfig) *StructuredClient {
	return &StructuredClient{gen: gen, cfg: cfg}
}

func (c *StructuredClient) GenerateDigest(ctx context.Context, sourceName, text string) ([]ArticleDraft, error) {
	return Generate(ctx, c.gen, c.cfg, digestPrompt(sourceName, text), Array[ArticleDraft]())
}

func (c *StructuredClient) Summarize(ctx context.Context, title, description, sourceName, publicationDate string) (string, error) {
	return Generate(ctx, c.gen, c.cfg, summaryPrompt(title, description, sourceName, publicationDate), String())
}

func (c *StructuredClient) Model() string {
	return SelectModel(c.cfg.Capability, c.cfg.Budget)
}
