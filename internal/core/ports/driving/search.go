package driving

import (
	"context"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// SearchService answers knowledge queries: structured facts first, semantic
// passage retrieval otherwise.
type SearchService interface {
	// Search returns at most opts.Limit results ordered by descending
	// score. Data-quality failures (no qualifying match, below-threshold
	// best score) surface as an empty slice, not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
