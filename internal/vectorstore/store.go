// Package vectorstore provides vector persistence and similarity search.
package vectorstore

import "context"

// Record is a chunk vector with its content and metadata, as stored.
type Record struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Vector   []float32      `json:"vector"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Hit is a single similarity search result. Score is 1 - cosine distance,
// in [0,1] for normalized vectors.
type Hit struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// VectorStore defines vector persistence and approximate nearest neighbor
// search. Filters are metadata equality criteria pushed down by the caller;
// hits scoring below minSimilarity are excluded from the response.
type VectorStore interface {
	Add(ctx context.Context, records []*Record) error
	SearchSimilar(ctx context.Context, query []float32, topK int, filters map[string]any, minSimilarity float64) ([]*Hit, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}
