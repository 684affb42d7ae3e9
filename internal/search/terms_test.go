package search

import (
	"reflect"
	"testing"
)

func TestExtractTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"basic", "machine learning", []string{"machine", "learning"}},
		{"lowercases", "Machine LEARNING", []string{"machine", "learning"}},
		{"strips punctuation", "what's machine-learning?", []string{"machine", "learning"}},
		{"drops stop words", "what is the machine for", []string{"machine"}},
		{"drops short terms", "go ml ai models", []string{"models"}},
		{"empty", "", []string{}},
		{"only stop words", "the and for", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTerms(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTerms(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestTokenizeKeepsShortWords(t *testing.T) {
	tokens := tokenize("Go is a fast language")
	if len(tokens) != 5 {
		t.Errorf("tokenize should keep all words, got %v", tokens)
	}
}
