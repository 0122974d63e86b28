package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
)

// Embedder turns text into a vector. GeminiProvider implements it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GuidanceRetriever returns reference material to ground the fix prompt.
// An empty string means no guidance is available.
type GuidanceRetriever interface {
	Retrieve(ctx context.Context, jobDescription string) (string, error)
}

// NoGuidance is the retriever used when vector search is disabled.
type NoGuidance struct{}

func (NoGuidance) Retrieve(context.Context, string) (string, error) {
	return "", nil
}

type vectorGuidance struct {
	store    VectorStore
	embedder Embedder
	prompts  *PromptBuilder
	limit    int
	logger   *zap.Logger
}

func NewVectorGuidance(store VectorStore, embedder Embedder, prompts *PromptBuilder, limit int, log *zap.Logger) GuidanceRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &vectorGuidance{
		store:    store,
		embedder: embedder,
		prompts:  prompts,
		limit:    limit,
		logger:   logger.OrNop(log),
	}
}

// Retrieve implements GuidanceRetriever.
func (v *vectorGuidance) Retrieve(ctx context.Context, jobDescription string) (string, error) {
	query := v.prompts.BuildRetrievalQuery(jobDescription)

	embedding, err := v.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed guidance query: %w", err)
	}

	results, err := v.store.SearchSimilar(ctx, embedding, DocTypeATSGuidance, v.limit)
	if err != nil {
		return "", fmt.Errorf("search guidance: %w", err)
	}

	v.logger.Debug("retrieved ats guidance", zap.Int("chunks", len(results)))
	return FormatGuidance(results), nil
}

// FormatGuidance renders search hits as numbered context blocks.
func FormatGuidance(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Guidance %d (score %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}
	return strings.Join(parts, "\n\n")
}
