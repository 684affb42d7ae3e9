package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/storage"
)

// BM25 parameters. Corpus statistics (N, df, average document length) are
// approximated from the candidate pool actually retrieved, not a global
// inverted index; this is a deliberate approximation.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// LexicalRetriever scores candidate chunks by term-frequency matching.
type LexicalRetriever struct {
	chunks   storage.ChunkLister
	poolSize int
}

// NewLexicalRetriever creates a lexical retriever drawing candidates from
// the given chunk lister, at most poolSize chunks per query.
func NewLexicalRetriever(chunks storage.ChunkLister, poolSize int) *LexicalRetriever {
	if poolSize <= 0 {
		poolSize = 1000
	}
	return &LexicalRetriever{chunks: chunks, poolSize: poolSize}
}

// Search scores the candidate pool against the query terms with a
// simplified BM25 and returns results sorted descending, capped at twice
// the query's top_k. Scores are normalized to [0,1] by the pool maximum.
// Chunks with a non-positive aggregate score are discarded.
func (r *LexicalRetriever) Search(ctx context.Context, query *models.SearchQuery) ([]*models.SearchResult, error) {
	terms := ExtractTerms(query.Query)
	if len(terms) == 0 {
		return nil, nil
	}
	var docIDs []string
	if query.Filters != nil {
		docIDs = query.Filters.DocumentIDs
	}
	pool, err := r.chunks.ListChunks(ctx, docIDs, r.poolSize)
	if err != nil {
		return nil, fmt.Errorf("list candidate chunks: %w", err)
	}
	if len(pool) == 0 {
		return nil, nil
	}

	// Pool-level statistics.
	tokenCounts := make([]map[string]int, len(pool))
	docLens := make([]int, len(pool))
	var totalLen int
	df := make(map[string]int, len(terms))
	for i, chunk := range pool {
		tokens := tokenize(chunk.Content)
		tokenCounts[i] = countTerms(tokens)
		docLens[i] = len(tokens)
		totalLen += len(tokens)
		for _, term := range terms {
			if tokenCounts[i][term] > 0 {
				df[term]++
			}
		}
	}
	n := float64(len(pool))
	avgDocLen := float64(totalLen) / n

	type scored struct {
		chunk *models.Chunk
		score float64
	}
	scoredChunks := make([]scored, 0, len(pool))
	for i, chunk := range pool {
		var score float64
		for _, term := range terms {
			tf := float64(tokenCounts[i][term])
			if tf == 0 {
				continue
			}
			idf := math.Log((n - float64(df[term]) + 0.5) / (float64(df[term]) + 0.5))
			norm := tf + bm25K1*(1-bm25B+bm25B*(float64(docLens[i])/avgDocLen))
			score += idf * tf * (bm25K1 + 1) / norm
		}
		if score <= 0 {
			continue
		}
		scoredChunks = append(scoredChunks, scored{chunk: chunk, score: score})
	}
	if len(scoredChunks) == 0 {
		return nil, nil
	}

	sort.Slice(scoredChunks, func(i, j int) bool { return scoredChunks[i].score > scoredChunks[j].score })
	limit := query.CandidateLimit()
	if limit < len(scoredChunks) {
		scoredChunks = scoredChunks[:limit]
	}

	// Normalize by the pool maximum so lexical scores live in [0,1] like
	// semantic similarities.
	maxScore := scoredChunks[0].score
	results := make([]*models.SearchResult, len(scoredChunks))
	for i, sc := range scoredChunks {
		results[i] = &models.SearchResult{
			Chunk:           sc.chunk,
			SimilarityScore: sc.score / maxScore,
		}
	}
	return results, nil
}
