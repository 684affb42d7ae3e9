package models

import "fmt"

// SearchResult is a single ranked hit: a chunk, its source document, and the
// final similarity score. Score is mutable during ranking only; Rank is
// assigned on the final capped slice, 1-based.
type SearchResult struct {
	Chunk              *Chunk    `json:"chunk"`
	Document           *Document `json:"document,omitempty"`
	SimilarityScore    float64   `json:"similarity_score"`
	HighlightedContent string    `json:"highlighted_content,omitempty"`
	Rank               int       `json:"rank,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query          string          `json:"query"`
	SearchType     SearchType      `json:"search_type"`
	Results        []*SearchResult `json:"results"`
	TotalResults   int             `json:"total_results"`
	SearchTime     float64         `json:"search_time"`
	FiltersApplied []string        `json:"filters_applied,omitempty"`
}

// ContextRetrievalRequest asks for a token-budgeted context block built from
// the highest-ranked chunks for a query.
type ContextRetrievalRequest struct {
	Query         string   `json:"query"`
	MaxTokens     int      `json:"max_tokens,omitempty"`
	MaxChunks     int      `json:"max_chunks,omitempty"`
	MinSimilarity float64  `json:"min_similarity,omitempty"`
	DocumentIDs   []string `json:"document_ids,omitempty"`
}

const (
	defaultContextTokens = 2000
	maxContextTokens     = 32000
	defaultContextChunks = 5
	maxContextChunks     = 50
)

// Validate normalizes the request and rejects out-of-bounds budgets.
func (r *ContextRetrievalRequest) Validate() error {
	if r.MaxTokens == 0 {
		r.MaxTokens = defaultContextTokens
	}
	if r.MaxTokens < 1 || r.MaxTokens > maxContextTokens {
		return fmt.Errorf("max_tokens must be between 1 and %d", maxContextTokens)
	}
	if r.MaxChunks == 0 {
		r.MaxChunks = defaultContextChunks
	}
	if r.MaxChunks < 1 || r.MaxChunks > maxContextChunks {
		return fmt.Errorf("max_chunks must be between 1 and %d", maxContextChunks)
	}
	if r.MinSimilarity < 0 || r.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be between 0 and 1")
	}
	return nil
}

// ContextRetrievalResponse carries the assembled context text. TotalTokens
// is an estimate and never exceeds the requested max_tokens.
type ContextRetrievalResponse struct {
	Context     string          `json:"context"`
	ChunksUsed  []*SearchResult `json:"chunks_used"`
	TotalTokens int             `json:"total_tokens"`
	Truncated   bool            `json:"truncated"`
}

// SearchStats exposes aggregate search counters. Purely observational.
type SearchStats struct {
	TotalSearches int64            `json:"total_searches"`
	AvgSearchTime float64          `json:"avg_search_time"`
	SearchTypes   map[string]int64 `json:"search_types"`
}
