package search

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/atsume/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBoosterExactMatchOutranksNonMatch(t *testing.T) {
	filler := strings.Repeat("background material on orchestration. ", 8)
	match := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "a", Content: filler + "rolling update strategy explained here"},
		SimilarityScore: 0.5,
	}
	noMatch := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "b", Content: filler + "general remarks without the phrase"},
		SimilarityScore: 0.5,
	}
	booster := &Booster{now: fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))}

	results := []*models.SearchResult{noMatch, match}
	booster.Rescore("rolling update strategy", results)

	if results[0].Chunk.ID != "a" {
		t.Fatalf("chunk containing the query verbatim should rank first, got %s", results[0].Chunk.ID)
	}
	if results[0].SimilarityScore <= results[1].SimilarityScore {
		t.Errorf("boosted score %f should exceed unboosted %f",
			results[0].SimilarityScore, results[1].SimilarityScore)
	}
}

func TestBoosterClampsAtOne(t *testing.T) {
	content := strings.Repeat("deployment notes. ", 20) + "rolling update"
	result := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "a", Content: content, SectionTitle: "Rolling Update"},
		SimilarityScore: 0.99,
	}
	booster := &Booster{now: fixedClock(time.Now())}
	booster.Rescore("rolling update", []*models.SearchResult{result})
	if result.SimilarityScore > 1.0 {
		t.Errorf("score must be clamped to 1.0, got %f", result.SimilarityScore)
	}
}

func TestBoosterZeroSimilarityStaysZero(t *testing.T) {
	result := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "a", Content: strings.Repeat("exact match text ", 20)},
		SimilarityScore: 0,
	}
	booster := &Booster{now: fixedClock(time.Now())}
	booster.Rescore("exact match text", []*models.SearchResult{result})
	if result.SimilarityScore != 0 {
		t.Errorf("multiplicative boost must not lift a zero score, got %f", result.SimilarityScore)
	}
}

func TestBoosterShortChunkPenalized(t *testing.T) {
	short := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "a", Content: "tiny"},
		SimilarityScore: 0.5,
	}
	booster := &Booster{now: fixedClock(time.Now())}
	booster.Rescore("unrelated query", []*models.SearchResult{short})
	if short.SimilarityScore >= 0.5 {
		t.Errorf("chunk under the minimum length should be penalized, got %f", short.SimilarityScore)
	}
}

func TestBoosterRecencyWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	filler := strings.Repeat("content without query terms here. ", 8)
	recent := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "recent", Content: filler, CreatedAt: now.Add(-24 * time.Hour)},
		SimilarityScore: 0.5,
	}
	stale := &models.SearchResult{
		Chunk:           &models.Chunk{ID: "stale", Content: filler, CreatedAt: now.Add(-90 * 24 * time.Hour)},
		SimilarityScore: 0.5,
	}
	booster := &Booster{now: fixedClock(now)}
	booster.Rescore("query", []*models.SearchResult{stale, recent})
	if recent.SimilarityScore <= stale.SimilarityScore {
		t.Errorf("chunk created within the window should score above a stale one: %f vs %f",
			recent.SimilarityScore, stale.SimilarityScore)
	}
}

func TestBoosterIdempotentOrdering(t *testing.T) {
	build := func() []*models.SearchResult {
		filler := strings.Repeat("identical chunk content repeated. ", 8)
		return []*models.SearchResult{
			{Chunk: &models.Chunk{ID: "b", Content: filler}, SimilarityScore: 0.5},
			{Chunk: &models.Chunk{ID: "a", Content: filler}, SimilarityScore: 0.5},
		}
	}
	booster := &Booster{now: fixedClock(time.Now())}
	first := build()
	second := build()
	booster.Rescore("query", first)
	booster.Rescore("query", second)
	for i := range first {
		if first[i].Chunk.ID != second[i].Chunk.ID {
			t.Fatalf("ordering not deterministic at %d", i)
		}
	}
}
