package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driving"
	"github.com/Vettuu/CHArloTte/internal/lookup"
	"github.com/Vettuu/CHArloTte/internal/normalizer"
	"github.com/Vettuu/CHArloTte/internal/vector"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// maxPrefilterDocuments caps how many keyword-matched documents restrict the
// vector scan.
const maxPrefilterDocuments = 5

// maxResultLimit bounds how many results a single search may return.
const maxResultLimit = 10

// searchService answers knowledge queries. Structured facts short-circuit
// the pipeline; everything else goes through embedding similarity over the
// chunk index.
type searchService struct {
	source     driven.DocumentSource
	chunkStore driven.ChunkStore
	embeddings driven.EmbeddingService
	minScore   float64
	logger     *slog.Logger
}

// SearchConfig holds dependencies and tuning for the search service.
type SearchConfig struct {
	Source     driven.DocumentSource
	ChunkStore driven.ChunkStore
	Embeddings driven.EmbeddingService
	MinScore   float64
	Logger     *slog.Logger
}

// NewSearch creates a new SearchService.
func NewSearch(cfg SearchConfig) driving.SearchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		source:     cfg.Source,
		chunkStore: cfg.ChunkStore,
		embeddings: cfg.Embeddings,
		minScore:   cfg.MinScore,
		logger:     logger,
	}
}

// scoredChunk pairs a chunk with its similarity to the query.
type scoredChunk struct {
	chunk *domain.Chunk
	score float64
}

// Search resolves a query against the knowledge base. A structured fact
// answer wins outright; otherwise chunks are ranked by cosine similarity and
// the whole result set is rejected when even the best chunk scores below the
// minimum. Data-quality problems yield an empty result set, never an error.
func (s *searchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchOptions().Limit
	}
	if limit > maxResultLimit {
		limit = maxResultLimit
	}

	documents, facts, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	if answer, ok := lookup.Structured(facts, query); ok {
		s.logger.Debug("structured lookup answered query")
		return []domain.SearchResult{{
			ID:      domain.StructuredResultID,
			Title:   domain.StructuredResultTitle,
			Excerpt: answer,
		}}, nil
	}

	queryVector, err := s.embeddings.EmbedText(ctx, normalizer.ForEmbedding(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryNorm, ok := vector.Norm(queryVector)
	if !ok {
		s.logger.Warn("query produced a degenerate embedding")
		return []domain.SearchResult{}, nil
	}

	chunks, err := s.candidateChunks(ctx, documents, query)
	if err != nil {
		return nil, err
	}

	scored := make([]scoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		norm, ok := s.chunkNorm(chunk)
		if !ok {
			continue
		}
		score, ok := vector.Cosine(queryVector, queryNorm, chunk.Embedding, norm)
		if !ok {
			continue
		}
		scored = append(scored, scoredChunk{chunk: chunk, score: score})
	}

	// Stable sort keeps store order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) == 0 || scored[0].score < s.minScore {
		s.logger.Debug("no chunk cleared the score threshold", "candidates", len(scored))
		return []domain.SearchResult{}, nil
	}

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]domain.SearchResult, len(scored))
	for i, sc := range scored {
		results[i] = projectResult(sc)
	}
	return results, nil
}

// candidateChunks narrows the scan to documents matched by a cheap keyword
// pass. When the pass matches nothing the whole corpus is scanned; when it
// matches documents that have no chunks the candidate set is legitimately
// empty.
func (s *searchService) candidateChunks(ctx context.Context, documents []domain.Document, query string) ([]*domain.Chunk, error) {
	matches := lookup.Documents(documents, query)
	if len(matches) == 0 {
		chunks, err := s.chunkStore.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("load chunks: %w", err)
		}
		return chunks, nil
	}

	if len(matches) > maxPrefilterDocuments {
		matches = matches[:maxPrefilterDocuments]
	}
	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.Document.ID
	}

	chunks, err := s.chunkStore.ByDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks for documents: %w", err)
	}
	return chunks, nil
}

// chunkNorm returns the chunk's cached embedding norm, computing it on the
// fly when absent. Backfilling the cache is a separate maintenance concern;
// search never writes.
func (s *searchService) chunkNorm(chunk *domain.Chunk) (float64, bool) {
	if chunk.EmbeddingNorm != nil {
		if *chunk.EmbeddingNorm <= 0 {
			return 0, false
		}
		return *chunk.EmbeddingNorm, true
	}
	return vector.Norm(chunk.Embedding)
}

// projectResult shapes a scored chunk for callers.
func projectResult(sc scoredChunk) domain.SearchResult {
	title := sc.chunk.Metadata.Title
	if title == "" {
		title = domain.DefaultResultTitle
	}
	score := math.Round(sc.score*1000) / 1000
	return domain.SearchResult{
		ID:      sc.chunk.ID,
		Title:   title,
		Excerpt: excerpt(sc.chunk.Content, domain.ExcerptLimit),
		Score:   &score,
	}
}

// excerpt truncates trimmed text to at most limit runes, marking the cut
// with an ellipsis.
func excerpt(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
