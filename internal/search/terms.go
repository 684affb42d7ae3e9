// Package search provides the hybrid retrieval and ranking engine.
package search

import (
	"strings"
	"unicode"
)

// stopWords are common terms excluded from lexical scoring and highlighting.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"from": true, "they": true, "what": true, "when": true, "where": true,
	"which": true, "will": true, "would": true, "there": true, "their": true,
	"about": true, "been": true, "into": true, "more": true, "some": true,
	"than": true, "then": true, "them": true, "these": true, "were": true,
	"how": true, "who": true, "why": true, "does": true, "should": true,
	"could": true, "your": true, "its": true, "also": true, "each": true,
}

const minTermLength = 3

// ExtractTerms tokenizes a query into content terms: lower-cased, stripped
// of punctuation, with short terms and stop-words dropped.
func ExtractTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minTermLength || stopWords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// countTerms returns term frequency counts for already-tokenized text.
func countTerms(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// tokenize splits text the same way ExtractTerms does but without the
// stop-word and length filters, so document length reflects real content.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
