package models

import (
	"fmt"
	"strings"
	"time"
)

// SearchType selects the retrieval strategy.
type SearchType string

const (
	SearchTypeSemantic SearchType = "semantic"
	SearchTypeHybrid   SearchType = "hybrid"
	SearchTypeLexical  SearchType = "lexical"
)

// Valid reports whether t is a known search type.
func (t SearchType) Valid() bool {
	switch t {
	case SearchTypeSemantic, SearchTypeHybrid, SearchTypeLexical:
		return true
	}
	return false
}

const (
	maxQueryLength = 1000
	defaultTopK    = 10
	maxTopK        = 100
)

// SearchFilters is the closed set of filter criteria a caller can apply.
// Single-valued criteria are pushed down to the vector store; multi-valued
// document ID membership and the date range are applied in a local pass.
type SearchFilters struct {
	DocumentIDs   []string   `json:"document_ids,omitempty"`
	DocumentTypes []string   `json:"document_types,omitempty"`
	Languages     []string   `json:"languages,omitempty"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
}

// Empty reports whether no filter criteria are set.
func (f *SearchFilters) Empty() bool {
	if f == nil {
		return true
	}
	return len(f.DocumentIDs) == 0 && len(f.DocumentTypes) == 0 &&
		len(f.Languages) == 0 && f.DateFrom == nil && f.DateTo == nil
}

// Validate checks filter consistency.
func (f *SearchFilters) Validate() error {
	if f == nil {
		return nil
	}
	if f.DateFrom != nil && f.DateTo != nil && !f.DateTo.After(*f.DateFrom) {
		return fmt.Errorf("date_to must be after date_from")
	}
	return nil
}

// Applied lists the filter criteria that are set, for response echoing.
func (f *SearchFilters) Applied() []string {
	if f == nil {
		return nil
	}
	var applied []string
	if len(f.DocumentIDs) > 0 {
		applied = append(applied, "document_ids")
	}
	if len(f.DocumentTypes) > 0 {
		applied = append(applied, "document_types")
	}
	if len(f.Languages) > 0 {
		applied = append(applied, "languages")
	}
	if f.DateFrom != nil || f.DateTo != nil {
		applied = append(applied, "date_range")
	}
	return applied
}

// SearchQuery represents a search request with optional filters.
type SearchQuery struct {
	Query           string         `json:"query"`
	SearchType      SearchType     `json:"search_type,omitempty"`
	TopK            int            `json:"top_k,omitempty"`
	MinSimilarity   float64        `json:"min_similarity,omitempty"`
	Filters         *SearchFilters `json:"filters,omitempty"`
	IncludeMetadata bool           `json:"include_metadata,omitempty"`
	Highlight       bool           `json:"highlight,omitempty"`
}

// Validate normalizes the query and rejects out-of-bounds fields. The query
// is trimmed; defaults are applied for unset search type and top_k. Called
// before any external call is made.
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if len(q.Query) > maxQueryLength {
		return fmt.Errorf("query exceeds %d characters", maxQueryLength)
	}
	if q.SearchType == "" {
		q.SearchType = SearchTypeSemantic
	}
	if !q.SearchType.Valid() {
		return fmt.Errorf("unknown search type %q", q.SearchType)
	}
	if q.TopK == 0 {
		q.TopK = defaultTopK
	}
	if q.TopK < 1 || q.TopK > maxTopK {
		return fmt.Errorf("top_k must be between 1 and %d", maxTopK)
	}
	if q.MinSimilarity < 0 || q.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be between 0 and 1")
	}
	return q.Filters.Validate()
}

// CandidateLimit returns how many raw candidates to request from a
// retriever: twice top_k, capped at the store maximum.
func (q *SearchQuery) CandidateLimit() int {
	limit := q.TopK * 2
	if limit > maxTopK {
		limit = maxTopK
	}
	return limit
}
