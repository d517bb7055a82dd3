package driven

import (
	"context"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// ChunkStore persists indexed chunks and their embeddings. The corpus is
// small enough for full linear scans; there is no nearest-neighbor index.
type ChunkStore interface {
	// Truncate removes every chunk. Rebuilds always start here: the corpus
	// is replaced wholesale, never merged.
	Truncate(ctx context.Context) error

	// InsertBatch stores chunks, assigning their IDs. Insertion order is
	// preserved on read.
	InsertBatch(ctx context.Context, chunks []*domain.Chunk) error

	// All returns every chunk in insertion order.
	All(ctx context.Context) ([]*domain.Chunk, error)

	// ByDocuments returns the chunks belonging to any of the given
	// documents, in insertion order.
	ByDocuments(ctx context.Context, documentIDs []string) ([]*domain.Chunk, error)

	// UpdateNorm persists a backfilled embedding norm for one chunk.
	UpdateNorm(ctx context.Context, chunkID string, norm float64) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
