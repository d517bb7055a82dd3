package driven

import "context"

// EmbeddingService maps batches of normalized strings to fixed-length float
// vectors, one per input in input order.
type EmbeddingService interface {
	// EmbedBatch generates embeddings for multiple texts. Implementations
	// truncate over-long inputs and skip empty strings upstream; the slots
	// of skipped inputs come back as empty vectors.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedText generates an embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float64, error)

	// Model returns the configured model identifier ("" when unset).
	Model() string

	// HealthCheck verifies the provider is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the service.
	Close() error
}
