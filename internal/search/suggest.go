package search

import (
	"fmt"
	"strings"
)

// suggestionTemplates expand a partial query into common question shapes.
// Template expansions, not learned from usage.
var suggestionTemplates = []string{
	"%s",
	"what is %s",
	"how to %s",
	"%s examples",
	"%s tutorial",
	"%s best practices",
}

// Suggestions returns template expansions of the partial query. The partial
// must have at least two non-whitespace characters; otherwise no
// suggestions are returned.
func Suggestions(partial string, limit int) []string {
	trimmed := strings.TrimSpace(partial)
	if len(strings.Join(strings.Fields(trimmed), "")) < 2 {
		return nil
	}
	if limit <= 0 || limit > len(suggestionTemplates) {
		limit = len(suggestionTemplates)
	}
	suggestions := make([]string, 0, limit)
	for _, tmpl := range suggestionTemplates[:limit] {
		suggestions = append(suggestions, fmt.Sprintf(tmpl, trimmed))
	}
	return suggestions
}
