package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/pkg/utils"
)

// sentenceBoundaryFraction is how far into the available space a sentence
// boundary must lie for partial inclusion to back off to it; earlier
// boundaries would waste too much of the budget.
const sentenceBoundaryFraction = 0.7

// AssembleContext builds a token-budgeted, source-annotated context block
// for generation. Chunks are accumulated greedily in ranked order; when a
// whole chunk would exceed the budget a partial inclusion at a sentence
// boundary is attempted and accumulation stops. The returned token total
// never exceeds the request's max_tokens.
func (e *Engine) AssembleContext(ctx context.Context, req *models.ContextRetrievalRequest) (*models.ContextRetrievalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}
	query := &models.SearchQuery{
		Query:         req.Query,
		SearchType:    models.SearchTypeSemantic,
		TopK:          req.MaxChunks,
		MinSimilarity: req.MinSimilarity,
	}
	if len(req.DocumentIDs) > 0 {
		query.Filters = &models.SearchFilters{DocumentIDs: req.DocumentIDs}
	}
	searchResp, err := e.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	resp := &models.ContextRetrievalResponse{
		ChunksUsed: make([]*models.SearchResult, 0, len(searchResp.Results)),
	}
	var builder strings.Builder
	remaining := req.MaxTokens

	for _, result := range searchResp.Results {
		fragment := e.formatFragment(result)
		cost := e.estimator.EstimateTokens(fragment)
		if cost <= remaining {
			builder.WriteString(fragment)
			remaining -= cost
			resp.ChunksUsed = append(resp.ChunksUsed, result)
			continue
		}
		// Partial inclusion: convert the remaining budget to characters and
		// back off to a sentence boundary when one lies late enough.
		partial := truncateFragment(fragment, remaining*charsPerToken)
		if partial != "" {
			cost = e.estimator.EstimateTokens(partial)
			if cost <= remaining {
				builder.WriteString(partial)
				remaining -= cost
				resp.ChunksUsed = append(resp.ChunksUsed, result)
			}
		}
		resp.Truncated = true
		break
	}

	resp.Context = builder.String()
	resp.TotalTokens = req.MaxTokens - remaining
	return resp, nil
}

// formatFragment renders a chunk with a header line attributing it to its
// source: section title, page, and filename when available.
func (e *Engine) formatFragment(result *models.SearchResult) string {
	var parts []string
	if result.Chunk.SectionTitle != "" {
		parts = append(parts, result.Chunk.SectionTitle)
	}
	if result.Chunk.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("p. %d", result.Chunk.PageNumber))
	}
	if result.Document != nil && result.Document.Filename != "" {
		parts = append(parts, result.Document.Filename)
	}
	header := "[Source]"
	if len(parts) > 0 {
		header = fmt.Sprintf("[Source: %s]", strings.Join(parts, ", "))
	}
	return header + "\n" + result.Chunk.Content + "\n\n"
}

// truncateFragment cuts a fragment to maxChars, backing off to the last
// sentence boundary when it lies past sentenceBoundaryFraction of the
// available space. Returns "" when there is no room for content at all.
func truncateFragment(fragment string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	return utils.TruncateAtSentence(fragment, maxChars, sentenceBoundaryFraction)
}
