package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vettuu/CHArloTte/internal/chunker"
	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driving"
	"github.com/Vettuu/CHArloTte/internal/normalizer"
	"github.com/Vettuu/CHArloTte/internal/vector"
)

// Ensure indexerService implements IndexerService
var _ driving.IndexerService = (*indexerService)(nil)

// rebuildLockName is the distributed lock serializing index rebuilds.
const rebuildLockName = "knowledge-rebuild"

// rebuildLockTTL bounds how long a crashed rebuild can block the next one.
const rebuildLockTTL = 15 * time.Minute

// indexerService orchestrates the indexing pipeline:
// document source -> chunker -> normalizer -> embedding client -> chunk store.
type indexerService struct {
	source     driven.DocumentSource
	chunkStore driven.ChunkStore
	embeddings driven.EmbeddingService
	lock       driven.DistributedLock
	chunker    *chunker.Chunker
	batchSize  int
	logger     *slog.Logger
}

// IndexerConfig holds dependencies and tuning for the indexer.
type IndexerConfig struct {
	Source     driven.DocumentSource
	ChunkStore driven.ChunkStore
	Embeddings driven.EmbeddingService
	Lock       driven.DistributedLock // optional; nil disables cross-instance serialization
	ChunkSize  int
	Overlap    int
	BatchSize  int
	Logger     *slog.Logger
}

// NewIndexer creates a new IndexerService.
func NewIndexer(cfg IndexerConfig) driving.IndexerService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	return &indexerService{
		source:     cfg.Source,
		chunkStore: cfg.ChunkStore,
		embeddings: cfg.Embeddings,
		lock:       cfg.Lock,
		chunker:    chunker.New(cfg.ChunkSize, cfg.Overlap),
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Rebuild truncates the chunk store and re-indexes every document from the
// source, returning the number of chunks written. The rebuild is a full
// replace, never a merge: calling it twice with an unchanged source yields an
// equivalent corpus both times. An embedding failure in any batch aborts the
// whole rebuild.
func (s *indexerService) Rebuild(ctx context.Context) (int, error) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, rebuildLockName, rebuildLockTTL)
		if err != nil {
			return 0, fmt.Errorf("acquire rebuild lock: %w", err)
		}
		if !acquired {
			return 0, domain.ErrRebuildInProgress
		}
		defer func() {
			if err := s.lock.Release(ctx, rebuildLockName); err != nil {
				s.logger.Warn("failed to release rebuild lock", "error", err)
			}
		}()
	}

	start := time.Now()
	s.logger.Info("starting index rebuild")

	documents, _, err := s.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}

	if err := s.chunkStore.Truncate(ctx); err != nil {
		return 0, fmt.Errorf("truncate chunk store: %w", err)
	}

	total := 0
	for _, doc := range documents {
		written, err := s.indexDocument(ctx, doc)
		if err != nil {
			return total, fmt.Errorf("index document %s: %w", doc.ID, err)
		}
		total += written
	}

	s.logger.Info("index rebuild complete",
		"documents", len(documents),
		"chunks", total,
		"duration", time.Since(start),
	)
	return total, nil
}

// indexDocument chunks one document and persists its embedded chunks in
// batches. Embedding happens once per batch, not once per chunk; each batch
// is written immediately after its embedding call returns.
func (s *indexerService) indexDocument(ctx context.Context, doc domain.Document) (int, error) {
	passages := s.chunker.Split(doc.Content)
	if len(passages) == 0 {
		s.logger.Debug("document produced no chunks", "document_id", doc.ID)
		return 0, nil
	}

	written := 0
	for offset := 0; offset < len(passages); offset += s.batchSize {
		end := offset + s.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[offset:end]

		normalized := make([]string, len(batch))
		for i, passage := range batch {
			normalized[i] = normalizer.ForEmbedding(passage)
		}

		vectors, err := s.embeddings.EmbedBatch(ctx, normalized)
		if err != nil {
			return written, fmt.Errorf("embed batch at position %d: %w", offset, err)
		}

		chunks := make([]*domain.Chunk, len(batch))
		for i, passage := range batch {
			var embedding []float64
			if i < len(vectors) {
				embedding = vectors[i]
			}

			chunk := &domain.Chunk{
				DocumentID: doc.ID,
				Content:    passage,
				Metadata: domain.ChunkMetadata{
					Title:    doc.Title,
					Tags:     doc.Tags,
					Position: offset + i,
				},
				Embedding: embedding,
				CreatedAt: time.Now(),
			}
			if norm, ok := vector.Norm(embedding); ok {
				chunk.EmbeddingNorm = &norm
			}
			chunks[i] = chunk
		}

		if err := s.chunkStore.InsertBatch(ctx, chunks); err != nil {
			return written, fmt.Errorf("insert batch at position %d: %w", offset, err)
		}
		written += len(chunks)
	}

	return written, nil
}

// BackfillNorms computes and persists the embedding norm of every chunk that
// is missing one. It is idempotent and safe to run at any time; together
// with norm computation at insert it keeps search reads free of writes.
func (s *indexerService) BackfillNorms(ctx context.Context) (int, error) {
	chunks, err := s.chunkStore.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}

	updated := 0
	for _, chunk := range chunks {
		if chunk.EmbeddingNorm != nil {
			continue
		}
		norm, ok := vector.Norm(chunk.Embedding)
		if !ok {
			continue
		}
		if err := s.chunkStore.UpdateNorm(ctx, chunk.ID, norm); err != nil {
			return updated, fmt.Errorf("update norm for chunk %s: %w", chunk.ID, err)
		}
		updated++
	}
	return updated, nil
}
