package search

import "testing"

func TestSuggestions(t *testing.T) {
	got := Suggestions("kubernetes", 3)
	want := []string{"kubernetes", "what is kubernetes", "how to kubernetes"}
	if len(got) != len(want) {
		t.Fatalf("got %d suggestions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestionsTooShort(t *testing.T) {
	for _, partial := range []string{"", " ", "k", " k ", "\t"} {
		if got := Suggestions(partial, 5); got != nil {
			t.Errorf("Suggestions(%q) = %v, want nil", partial, got)
		}
	}
}

func TestSuggestionsTrimsWhitespace(t *testing.T) {
	got := Suggestions("  docker  ", 1)
	if len(got) != 1 || got[0] != "docker" {
		t.Errorf("got %v, want [docker]", got)
	}
}

func TestSuggestionsLimitBounds(t *testing.T) {
	if got := Suggestions("docker", 0); len(got) != len(suggestionTemplates) {
		t.Errorf("limit 0 should return all templates, got %d", len(got))
	}
	if got := Suggestions("docker", 100); len(got) != len(suggestionTemplates) {
		t.Errorf("oversized limit should cap at template count, got %d", len(got))
	}
}

func TestHeuristicEstimator(t *testing.T) {
	est := HeuristicEstimator{}
	if got := est.EstimateTokens("12345678"); got != 2 {
		t.Errorf("EstimateTokens = %d, want 2", got)
	}
	if got := est.EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", got)
	}
}
