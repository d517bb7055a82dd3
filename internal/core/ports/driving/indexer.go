package driving

import "context"

// IndexerService rebuilds the chunk index from the document source.
type IndexerService interface {
	// Rebuild truncates the chunk store and re-indexes every document,
	// returning the number of chunks written. At most one rebuild runs at
	// a time; a concurrent call fails with domain.ErrRebuildInProgress.
	Rebuild(ctx context.Context) (int, error)

	// BackfillNorms persists the embedding norm of every chunk missing
	// one. Idempotent; returns the number of chunks updated.
	BackfillNorms(ctx context.Context) (int, error)
}
