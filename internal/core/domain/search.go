package domain

const (
	// StructuredResultID is the synthetic result ID used when a structured
	// fact answers the query instead of semantic search.
	StructuredResultID = "structured"

	// StructuredResultTitle is the title attached to structured results.
	StructuredResultTitle = "Dato ufficiale"

	// DefaultResultTitle is used when a chunk carries no title metadata.
	DefaultResultTitle = "Knowledge"

	// ExcerptLimit is the maximum excerpt length returned to callers.
	ExcerptLimit = 600
)

// SearchResult is one retrieval hit projected for callers. Score is nil for
// structured results, which are treated as guaranteed top hits.
type SearchResult struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Score   *float64 `json:"score,omitempty"`
}

// SearchOptions bounds a search request.
type SearchOptions struct {
	Limit int `json:"limit"`
}

// DefaultSearchOptions returns the defaults used by the HTTP surface.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: 3}
}
