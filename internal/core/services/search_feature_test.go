package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven/mocks"
	"github.com/Vettuu/CHArloTte/internal/normalizer"
)

// searchFeature holds the per-scenario state driving the search BDD suite.
type searchFeature struct {
	docs       []domain.Document
	facts      domain.FactTable
	store      *mocks.MockChunkStore
	embeddings *mocks.MockEmbeddingService
	minScore   float64

	results []domain.SearchResult
	err     error
}

func newSearchFeature() *searchFeature {
	return &searchFeature{
		facts:      domain.FactTable{},
		store:      mocks.NewMockChunkStore(),
		embeddings: mocks.NewMockEmbeddingService(),
		minScore:   0.7,
	}
}

func (f *searchFeature) addDocument(id, title string) error {
	f.docs = append(f.docs, domain.Document{
		ID:      id,
		Title:   title,
		Summary: title,
	})
	return nil
}

func (f *searchFeature) recordFact(path, value string) error {
	f.facts[path] = value
	return nil
}

func (f *searchFeature) addChunk(content, documentID, vector string) error {
	embedding, err := parseVector(vector)
	if err != nil {
		return err
	}
	f.embeddings.SetVector(normalizer.ForEmbedding(content), embedding)
	return f.store.InsertBatch(context.Background(), []*domain.Chunk{{
		DocumentID: documentID,
		Content:    content,
		Embedding:  embedding,
	}})
}

func (f *searchFeature) pinQueryVector(query, vector string) error {
	embedding, err := parseVector(vector)
	if err != nil {
		return err
	}
	f.embeddings.SetVector(normalizer.ForEmbedding(query), embedding)
	return nil
}

func (f *searchFeature) setMinScore(value string) error {
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	f.minScore = score
	return nil
}

func (f *searchFeature) search(query string) error {
	return f.searchWithLimit(query, 0)
}

func (f *searchFeature) searchWithLimit(query string, limit int) error {
	svc := NewSearch(SearchConfig{
		Source:     mocks.NewMockDocumentSource(f.docs, f.facts),
		ChunkStore: f.store,
		Embeddings: f.embeddings,
		MinScore:   f.minScore,
	})
	opts := domain.DefaultSearchOptions()
	if limit > 0 {
		opts.Limit = limit
	}
	f.results, f.err = svc.Search(context.Background(), query, opts)
	return f.err
}

func (f *searchFeature) resultCountIs(count int) error {
	if len(f.results) != count {
		return fmt.Errorf("expected %d results, got %d: %+v", count, len(f.results), f.results)
	}
	return nil
}

func (f *searchFeature) firstResultHasID(id string) error {
	if len(f.results) == 0 {
		return fmt.Errorf("no results")
	}
	if f.results[0].ID != id {
		return fmt.Errorf("expected first result id %q, got %q", id, f.results[0].ID)
	}
	return nil
}

func (f *searchFeature) firstResultHasTitle(title string) error {
	if len(f.results) == 0 {
		return fmt.Errorf("no results")
	}
	if f.results[0].Title != title {
		return fmt.Errorf("expected first result title %q, got %q", title, f.results[0].Title)
	}
	return nil
}

func (f *searchFeature) firstResultHasNoScore() error {
	if len(f.results) == 0 {
		return fmt.Errorf("no results")
	}
	if f.results[0].Score != nil {
		return fmt.Errorf("expected nil score, got %f", *f.results[0].Score)
	}
	return nil
}

func (f *searchFeature) firstResultHasScore(value string) error {
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	if len(f.results) == 0 {
		return fmt.Errorf("no results")
	}
	if f.results[0].Score == nil {
		return fmt.Errorf("expected score %f, got nil", score)
	}
	if *f.results[0].Score != score {
		return fmt.Errorf("expected score %f, got %f", score, *f.results[0].Score)
	}
	return nil
}

func (f *searchFeature) firstResultBelongsToDocument(documentID string) error {
	if len(f.results) == 0 {
		return fmt.Errorf("no results")
	}
	chunks, err := f.store.ByDocuments(context.Background(), []string{documentID})
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if chunk.ID == f.results[0].ID {
			return nil
		}
	}
	return fmt.Errorf("result %q is not a chunk of document %q", f.results[0].ID, documentID)
}

func (f *searchFeature) noEmbeddingRequested() error {
	if calls := f.embeddings.Calls(); calls != 0 {
		return fmt.Errorf("expected no embedding calls, got %d", calls)
	}
	return nil
}

func parseVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vector := make([]float64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad vector component %q: %w", part, err)
		}
		vector = append(vector, value)
	}
	return vector, nil
}

func InitializeSearchScenario(sc *godog.ScenarioContext) {
	f := newSearchFeature()

	// fresh state per scenario
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*f = *newSearchFeature()
		return ctx, nil
	})

	sc.Step(`^the knowledge base contains a document "([^"]*)" about "([^"]*)"$`, f.addDocument)
	sc.Step(`^the fact table records "([^"]*)" as "([^"]*)"$`, f.recordFact)
	sc.Step(`^the chunk "([^"]*)" of document "([^"]*)" embeds to "([^"]*)"$`, f.addChunk)
	sc.Step(`^the query "([^"]*)" embeds to "([^"]*)"$`, f.pinQueryVector)
	sc.Step(`^the minimum score is ([0-9.]+)$`, f.setMinScore)
	sc.Step(`^I search for "([^"]*)"$`, f.search)
	sc.Step(`^I search for "([^"]*)" with limit (\d+)$`, f.searchWithLimit)
	sc.Step(`^I get exactly (\d+) results?$`, f.resultCountIs)
	sc.Step(`^the first result has id "([^"]*)"$`, f.firstResultHasID)
	sc.Step(`^the first result has title "([^"]*)"$`, f.firstResultHasTitle)
	sc.Step(`^the first result has no score$`, f.firstResultHasNoScore)
	sc.Step(`^the first result has score ([0-9.]+)$`, f.firstResultHasScore)
	sc.Step(`^the first result belongs to document "([^"]*)"$`, f.firstResultBelongsToDocument)
	sc.Step(`^no embedding was requested$`, f.noEmbeddingRequested)
}

func TestSearchFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeSearchScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("search feature suite failed")
	}
}
