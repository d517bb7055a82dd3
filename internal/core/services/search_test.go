package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven/mocks"
)

type searchFixture struct {
	source     *mocks.MockDocumentSource
	chunkStore *mocks.MockChunkStore
	embeddings *mocks.MockEmbeddingService
}

func newSearchService(t *testing.T, fx searchFixture, minScore float64) *searchService {
	t.Helper()
	if fx.source == nil {
		fx.source = mocks.NewMockDocumentSource(nil, nil)
	}
	if fx.chunkStore == nil {
		fx.chunkStore = mocks.NewMockChunkStore()
	}
	if fx.embeddings == nil {
		fx.embeddings = mocks.NewMockEmbeddingService()
	}
	svc := NewSearch(SearchConfig{
		Source:     fx.source,
		ChunkStore: fx.chunkStore,
		Embeddings: fx.embeddings,
		MinScore:   minScore,
	})
	return svc.(*searchService)
}

func insertChunk(t *testing.T, store *mocks.MockChunkStore, docID, title, content string, embedding []float64) string {
	t.Helper()
	chunk := &domain.Chunk{
		DocumentID: docID,
		Content:    content,
		Metadata:   domain.ChunkMetadata{Title: title},
		Embedding:  embedding,
	}
	if err := store.InsertBatch(context.Background(), []*domain.Chunk{chunk}); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	return chunk.ID
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	store := mocks.NewMockChunkStore()
	insertChunk(t, store, "doc-1", "Doc1", "first document body", []float64{1, 0, 0})
	insertChunk(t, store, "doc-2", "Doc2", "second document body", []float64{0, 1, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 0, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.7)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{Limit: 3})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Title != "Doc1" {
		t.Errorf("top result title = %q, want %q", results[0].Title, "Doc1")
	}
	if results[0].Score == nil || *results[0].Score != 1.0 {
		t.Errorf("top result score = %v, want 1.0", results[0].Score)
	}
	// Once the best chunk clears the threshold, lower-scoring chunks
	// still fill the remaining slots.
	if results[1].Title != "Doc2" {
		t.Errorf("second result title = %q, want %q", results[1].Title, "Doc2")
	}
	if results[1].Score == nil || *results[1].Score != 0.0 {
		t.Errorf("second result score = %v, want 0.0", results[1].Score)
	}
}

func TestSearchRejectsAllWhenBestScoreBelowMinimum(t *testing.T) {
	store := mocks.NewMockChunkStore()
	insertChunk(t, store, "doc-1", "Doc1", "first document body", []float64{1, 0, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 1, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.95)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() returned %d results, want 0 (best score 0.707 below 0.95)", len(results))
	}
}

func TestSearchStructuredFactShortCircuit(t *testing.T) {
	facts := domain.FactTable{
		"contacts.responsabile_info_point.name":  "Maria Rossi",
		"contacts.responsabile_info_point.phone": "+39 333 1234567",
	}
	source := mocks.NewMockDocumentSource(nil, facts)
	embeddings := mocks.NewMockEmbeddingService()

	svc := newSearchService(t, searchFixture{source: source, embeddings: embeddings}, 0.7)

	results, err := svc.Search(context.Background(), "nome responsabile", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].ID != domain.StructuredResultID {
		t.Errorf("result ID = %q, want %q", results[0].ID, domain.StructuredResultID)
	}
	if results[0].Title != domain.StructuredResultTitle {
		t.Errorf("result title = %q, want %q", results[0].Title, domain.StructuredResultTitle)
	}
	if !strings.Contains(results[0].Excerpt, "Maria Rossi") {
		t.Errorf("excerpt = %q, want it to name the contact", results[0].Excerpt)
	}
	if results[0].Score != nil {
		t.Errorf("structured result score = %v, want nil", results[0].Score)
	}
	if embeddings.Calls() != 0 {
		t.Errorf("embedding calls = %d, want 0 after structured short-circuit", embeddings.Calls())
	}
}

func TestSearchKeywordPrefilterRestrictsCandidates(t *testing.T) {
	docs := []domain.Document{
		{ID: "doc-1", Title: "Doc1", Summary: "general notes", Content: "first document body"},
		{ID: "doc-2", Title: "Doc2", Summary: "workshop registration details", Content: "second document body"},
	}
	source := mocks.NewMockDocumentSource(docs, nil)

	store := mocks.NewMockChunkStore()
	insertChunk(t, store, "doc-1", "Doc1", "first document body", []float64{1, 0, 0})
	insertChunk(t, store, "doc-2", "Doc2", "second document body", []float64{0, 1, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("registration", []float64{1, 0, 0})

	svc := newSearchService(t, searchFixture{source: source, chunkStore: store, embeddings: embeddings}, 0.0)

	// "registration" matches doc-2's summary, so doc-1's perfectly
	// aligned chunk never enters the scan.
	results, err := svc.Search(context.Background(), "registration", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Title != "Doc2" {
		t.Errorf("result title = %q, want %q", results[0].Title, "Doc2")
	}
}

func TestSearchPrefilteredDocumentWithoutChunks(t *testing.T) {
	docs := []domain.Document{
		{ID: "doc-1", Title: "Doc1", Summary: "workshop registration details", Content: "first document body"},
	}
	source := mocks.NewMockDocumentSource(docs, nil)
	store := mocks.NewMockChunkStore()

	svc := newSearchService(t, searchFixture{source: source, chunkStore: store}, 0.0)

	results, err := svc.Search(context.Background(), "registration", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() returned %d results, want 0 for an unindexed document", len(results))
	}
}

func TestSearchDefaultTitleAndExcerptTruncation(t *testing.T) {
	store := mocks.NewMockChunkStore()
	long := strings.Repeat("x", domain.ExcerptLimit+100)
	insertChunk(t, store, "doc-1", "", long, []float64{1, 0, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 0, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.7)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Title != domain.DefaultResultTitle {
		t.Errorf("title = %q, want %q", results[0].Title, domain.DefaultResultTitle)
	}
	if !strings.HasSuffix(results[0].Excerpt, "...") {
		t.Errorf("excerpt should end with an ellipsis, got %q", results[0].Excerpt[len(results[0].Excerpt)-10:])
	}
	if got := len([]rune(results[0].Excerpt)); got > domain.ExcerptLimit+3 {
		t.Errorf("excerpt length = %d runes, want at most %d", got, domain.ExcerptLimit+3)
	}
}

func TestSearchScoreRounding(t *testing.T) {
	store := mocks.NewMockChunkStore()
	insertChunk(t, store, "doc-1", "Doc1", "first document body", []float64{1, 0, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 1, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.5)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Score == nil || *results[0].Score != 0.707 {
		t.Errorf("score = %v, want 0.707", results[0].Score)
	}
}

func TestSearchComputesMissingNormWithoutPersisting(t *testing.T) {
	store := mocks.NewMockChunkStore()
	id := insertChunk(t, store, "doc-1", "Doc1", "first document body", []float64{2, 0, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 0, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.7)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || *results[0].Score != 1.0 {
		t.Fatalf("Search() = %+v, want one result scored 1.0", results)
	}

	chunks, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	for _, chunk := range chunks {
		if chunk.ID == id && chunk.EmbeddingNorm != nil {
			t.Errorf("search persisted a norm, want reads side-effect-free")
		}
	}
}

func TestSearchSkipsChunksWithoutEmbedding(t *testing.T) {
	store := mocks.NewMockChunkStore()
	insertChunk(t, store, "doc-1", "Doc1", "first document body", nil)
	insertChunk(t, store, "doc-1", "Doc1", "second passage", []float64{1, 0, 0})

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 0, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.7)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Excerpt != "second passage" {
		t.Errorf("excerpt = %q, want the embedded chunk", results[0].Excerpt)
	}
}

func TestSearchLimitClamping(t *testing.T) {
	store := mocks.NewMockChunkStore()
	for i := 0; i < 6; i++ {
		insertChunk(t, store, "doc-1", "Doc1", "passage", []float64{1, 0, 0})
	}

	embeddings := mocks.NewMockEmbeddingService()
	embeddings.SetVector("qqq", []float64{1, 0, 0})

	svc := newSearchService(t, searchFixture{chunkStore: store, embeddings: embeddings}, 0.7)

	results, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != domain.DefaultSearchOptions().Limit {
		t.Errorf("default limit returned %d results, want %d", len(results), domain.DefaultSearchOptions().Limit)
	}

	results, err = svc.Search(context.Background(), "qqq", domain.SearchOptions{Limit: 100})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 6 {
		t.Errorf("oversized limit returned %d results, want all 6", len(results))
	}
}

func TestSearchEmbeddingFailureSurfaces(t *testing.T) {
	embeddings := mocks.NewMockEmbeddingService()
	embeddings.FailNext = errors.New("provider down")

	svc := newSearchService(t, searchFixture{embeddings: embeddings}, 0.7)

	if _, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{}); err == nil {
		t.Fatal("Search() expected error when embedding the query fails")
	}
}

func TestSearchSourceFailureSurfaces(t *testing.T) {
	source := mocks.NewMockDocumentSource(nil, nil)
	source.FailNext = errors.New("disk gone")

	svc := newSearchService(t, searchFixture{source: source}, 0.7)

	if _, err := svc.Search(context.Background(), "qqq", domain.SearchOptions{}); err == nil {
		t.Fatal("Search() expected error when the knowledge base cannot load")
	}
}
