package search

import (
	"regexp"
	"sort"
	"strings"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps case-insensitive literal matches of the query's content
// terms in <mark> tags. Applied only on the final capped result slice.
func Highlight(content string, terms []string) string {
	if len(terms) == 0 || content == "" {
		return content
	}
	// Longest terms first so "learning" wins over "learn" and a single pass
	// avoids wrapping inside an already-inserted tag.
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, term := range sorted {
		quoted[i] = regexp.QuoteMeta(term)
	}
	re, err := regexp.Compile("(?i)(" + strings.Join(quoted, "|") + ")")
	if err != nil {
		return content
	}
	return re.ReplaceAllString(content, markOpen+"$1"+markClose)
}
