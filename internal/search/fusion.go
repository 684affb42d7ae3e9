package search

import (
	"sort"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/pkg/utils"
)

// FusionWeights control reciprocal rank fusion for hybrid search.
type FusionWeights struct {
	SemanticRank float64
	LexicalRank  float64
	SemanticSim  float64
	LexicalSim   float64
}

// DefaultFusionWeights favor the semantic list: semantic candidates carry
// richer metadata and embeddings capture intent better than term overlap.
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{
		SemanticRank: 0.6,
		LexicalRank:  0.4,
		SemanticSim:  0.2,
		LexicalSim:   0.1,
	}
}

// Fuse merges the semantic and lexical result lists with reciprocal rank
// fusion over the union of chunk IDs. A chunk absent from one list
// contributes zero for both that list's reciprocal term and its raw-score
// term. When a chunk appears in both lists the semantic result object is
// kept. The fused score is clamped to [0,1]; the returned list is sorted
// descending.
func Fuse(semantic, lexical []*models.SearchResult, weights FusionWeights) []*models.SearchResult {
	type entry struct {
		result *models.SearchResult
		score  float64
	}
	merged := make(map[string]*entry, len(semantic)+len(lexical))

	for rank, result := range semantic {
		score := weights.SemanticRank/float64(rank+1) + weights.SemanticSim*result.SimilarityScore
		merged[result.Chunk.ID] = &entry{result: result, score: score}
	}
	for rank, result := range lexical {
		score := weights.LexicalRank/float64(rank+1) + weights.LexicalSim*result.SimilarityScore
		if e, ok := merged[result.Chunk.ID]; ok {
			e.score += score
			continue
		}
		merged[result.Chunk.ID] = &entry{result: result, score: score}
	}

	fused := make([]*models.SearchResult, 0, len(merged))
	for _, e := range merged {
		e.result.SimilarityScore = utils.Clamp01(e.score)
		fused = append(fused, e.result)
	}
	// Tie-break on chunk ID: map iteration order is random and identical
	// inputs must produce identical ordering.
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].SimilarityScore != fused[j].SimilarityScore {
			return fused[i].SimilarityScore > fused[j].SimilarityScore
		}
		return fused[i].Chunk.ID < fused[j].Chunk.ID
	})
	return fused
}
