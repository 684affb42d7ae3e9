package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/atsume/internal/models"
)

// Boost values. Content signals reward exact and near matches; metadata
// signals reward well-annotated and recent chunks.
const (
	boostExactQuery   = 0.10
	boostSectionTitle = 0.05
	boostIdealLength  = 0.02
	penaltyShortChunk = 0.05
	boostHasSection   = 0.02
	boostRecentChunk  = 0.01
	idealLengthMin    = 200
	idealLengthMax    = 1000
	shortChunkLength  = 50
	recencyWindow     = 30 * 24 * time.Hour
)

// Booster applies deterministic, order-independent score adjustments after
// retrieval and fusion, before truncation. The boost is multiplicative on
// the raw similarity: a zero-similarity chunk cannot be boosted into
// relevance.
type Booster struct {
	now func() time.Time
}

// NewBooster creates a booster using the wall clock for recency.
func NewBooster() *Booster {
	return &Booster{now: time.Now}
}

// Rescore applies boosts to every result and re-sorts descending. Scores
// are clamped to [0,1]. Ties are broken by chunk ID so identical inputs
// produce identical ordering.
func (b *Booster) Rescore(query string, results []*models.SearchResult) {
	now := b.now()
	for _, result := range results {
		boost := b.contentBoost(query, result.Chunk) + b.metadataBoost(result.Chunk, now)
		result.SimilarityScore = math.Min(1.0, result.SimilarityScore*(1+boost))
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}

func (b *Booster) contentBoost(query string, chunk *models.Chunk) float64 {
	var boost float64
	contentLower := strings.ToLower(chunk.Content)
	queryLower := strings.ToLower(strings.TrimSpace(query))

	if queryLower != "" && strings.Contains(contentLower, queryLower) {
		boost += boostExactQuery
	}
	if chunk.SectionTitle != "" {
		titleLower := strings.ToLower(chunk.SectionTitle)
		for _, word := range strings.Fields(queryLower) {
			if strings.Contains(titleLower, word) {
				boost += boostSectionTitle
				break
			}
		}
	}
	switch length := len(chunk.Content); {
	case length >= idealLengthMin && length <= idealLengthMax:
		boost += boostIdealLength
	case length < shortChunkLength:
		boost -= penaltyShortChunk
	}
	return boost
}

func (b *Booster) metadataBoost(chunk *models.Chunk, now time.Time) float64 {
	var boost float64
	if chunk.SectionTitle != "" {
		boost += boostHasSection
	}
	if !chunk.CreatedAt.IsZero() && now.Sub(chunk.CreatedAt) < recencyWindow {
		boost += boostRecentChunk
	}
	return boost
}
