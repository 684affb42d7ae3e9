package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hyperjump/atsume/pkg/utils"
)

// HTTPEmbedder calls an OpenAI-compatible embeddings endpoint. Provider
// failures surface as errors; retry policy belongs to the caller.
type HTTPEmbedder struct {
	endpoint   string
	model      string
	apiKey     string
	dimensions int
	client     *http.Client
}

// NewHTTPEmbedder creates an embedder for the given endpoint and model.
// dimensions must match what the model produces.
func NewHTTPEmbedder(endpoint, model, apiKey string, dimensions int) (*HTTPEmbedder, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &HTTPEmbedder{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		dimensions: dimensions,
		client:     &http.Client{},
	}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding for a single text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in a single provider call. Returned vectors
// are normalized to unit length so inner product equals cosine similarity.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding provider request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding provider returned %d: %s", resp.StatusCode, payload)
	}
	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d inputs", len(parsed.Data), len(texts))
	}
	embeddings := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding provider returned out-of-range index %d", d.Index)
		}
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(d.Embedding), e.dimensions)
		}
		vec := make([]float32, e.dimensions)
		copy(vec, d.Embedding)
		utils.NormalizeL2(vec)
		embeddings[d.Index] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HTTPEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HTTPEmbedder.
func (e *HTTPEmbedder) Close() error {
	return nil
}
