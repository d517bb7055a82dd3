// Package openai implements the embedding and realtime driven ports against
// the OpenAI HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Ensure Embedding implements EmbeddingService
var _ driven.EmbeddingService = (*Embedding)(nil)

// maxInputLength caps each input in characters before it is sent upstream.
// The embedding models reject oversized inputs; chunks should never get
// close to this, but document truncation upstream keeps the indexer safe.
const maxInputLength = 8000

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = "text-embedding-3-small"

// Embedding implements EmbeddingService using OpenAI's embedding API.
type Embedding struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewEmbedding creates a new OpenAI embedding client. A missing API key is
// a configuration error surfaced as domain.ErrEmbeddingModelNotConfigured.
func NewEmbedding(apiKey, model, baseURL string) (*Embedding, error) {
	if apiKey == "" {
		return nil, domain.ErrEmbeddingModelNotConfigured
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Embedding{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// embeddingRequest is the request body for the embeddings endpoint.
type embeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// embeddingResponse is the response from the embeddings endpoint.
type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// EmbedBatch embeds texts in one API call, returning one vector per input in
// input order. Empty inputs are not sent upstream and come back as nil
// vectors in their slots.
func (e *Embedding) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var inputs []string
	slots := make([]int, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		inputs = append(inputs, truncate(text, maxInputLength))
		slots = append(slots, i)
	}

	vectors := make([][]float64, len(texts))
	if len(inputs) == 0 {
		return vectors, nil
	}

	resp, err := e.doRequest(ctx, embeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, err
	}

	for _, d := range resp.Data {
		if d.Index < len(slots) {
			vectors[slots[d.Index]] = d.Embedding
		}
	}
	return vectors, nil
}

// EmbedText embeds a single text.
func (e *Embedding) EmbedText(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || vectors[0] == nil {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrEmbeddingProvider)
	}
	return vectors[0], nil
}

// Model returns the model name being used.
func (e *Embedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is reachable.
func (e *Embedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedText(ctx, "health check")
	return err
}

// Close releases idle connections.
func (e *Embedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// doRequest makes a request to the embeddings endpoint.
func (e *Embedding) doRequest(ctx context.Context, reqBody embeddingRequest) (*embeddingResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEmbeddingProvider, err)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrEmbeddingProvider, err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: %s (type: %s, code: %s)",
			domain.ErrEmbeddingProvider, embResp.Error.Message, embResp.Error.Type, embResp.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrEmbeddingProvider, resp.StatusCode)
	}

	return &embResp, nil
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
