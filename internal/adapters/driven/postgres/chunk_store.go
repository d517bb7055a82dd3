package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL. Embeddings are
// stored inline as float8 arrays; at knowledge-base scale a full scan is
// cheap and keeps the store engine-agnostic.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// Truncate removes every chunk. Used at the start of an index rebuild.
func (s *ChunkStore) Truncate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE knowledge_chunks RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("truncate chunks: %w", err)
	}
	return nil
}

// InsertBatch inserts chunks in one transaction, assigning their IDs and
// preserving the input order.
func (s *ChunkStore) InsertBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO knowledge_chunks (document_id, content, metadata, embedding, embedding_norm, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			metadata, err := json.Marshal(chunk.Metadata)
			if err != nil {
				return fmt.Errorf("marshal chunk metadata: %w", err)
			}

			var norm sql.NullFloat64
			if chunk.EmbeddingNorm != nil {
				norm = sql.NullFloat64{Float64: *chunk.EmbeddingNorm, Valid: true}
			}

			var id int64
			err = stmt.QueryRowContext(ctx,
				chunk.DocumentID,
				chunk.Content,
				metadata,
				pq.Array(chunk.Embedding),
				norm,
				chunk.CreatedAt,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("insert chunk for document %s: %w", chunk.DocumentID, err)
			}
			chunk.ID = strconv.FormatInt(id, 10)
		}
		return nil
	})
}

// All returns every chunk in insertion order.
func (s *ChunkStore) All(ctx context.Context) ([]*domain.Chunk, error) {
	query := `
		SELECT id, document_id, content, metadata, embedding, embedding_norm, created_at
		FROM knowledge_chunks
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// ByDocuments returns the chunks of the given documents in insertion order.
func (s *ChunkStore) ByDocuments(ctx context.Context, documentIDs []string) ([]*domain.Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, document_id, content, metadata, embedding, embedding_norm, created_at
		FROM knowledge_chunks
		WHERE document_id = ANY($1)
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(documentIDs))
	if err != nil {
		return nil, fmt.Errorf("query chunks by documents: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// UpdateNorm persists a chunk's embedding norm.
func (s *ChunkStore) UpdateNorm(ctx context.Context, chunkID string, norm float64) error {
	id, err := strconv.ParseInt(chunkID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chunk id %q: %w", chunkID, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE knowledge_chunks SET embedding_norm = $1 WHERE id = $2`,
		norm, id,
	)
	if err != nil {
		return fmt.Errorf("update chunk norm: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of indexed chunks.
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

func scanChunks(rows *sql.Rows) ([]*domain.Chunk, error) {
	var chunks []*domain.Chunk
	for rows.Next() {
		var (
			id        int64
			chunk     domain.Chunk
			metadata  []byte
			embedding pq.Float64Array
			norm      sql.NullFloat64
		)
		err := rows.Scan(&id, &chunk.DocumentID, &chunk.Content, &metadata, &embedding, &norm, &chunk.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}

		chunk.ID = strconv.FormatInt(id, 10)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		chunk.Embedding = []float64(embedding)
		if norm.Valid {
			value := norm.Float64
			chunk.EmbeddingNorm = &value
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}
