package domain

import "time"

// Document is a knowledge document assembled from one or more source files.
// Documents are loaded fresh on every index rebuild and are read-only during
// retrieval.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
	Content string   `json:"content"`
}

// ChunkMetadata is the snapshot of document attributes taken at index time.
type ChunkMetadata struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Position int      `json:"position"`
}

// Chunk is a searchable passage of a document together with its embedding.
// Position lives in Metadata and is the 0-based order within the owning
// document; positions for a document form a contiguous sequence matching
// generation order.
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Embedding  []float64     `json:"embedding,omitempty"`

	// EmbeddingNorm caches the Euclidean norm of Embedding. It is nil when
	// the norm has not been computed yet; the store backfills it on first use.
	EmbeddingNorm *float64 `json:"embedding_norm,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DocumentMatch is a keyword-search hit over raw documents, used to narrow
// the candidate chunk set before semantic scoring.
type DocumentMatch struct {
	Document *Document `json:"document"`
	Excerpt  string    `json:"excerpt"`
}
