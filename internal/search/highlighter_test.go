package search

import "testing"

func TestHighlight(t *testing.T) {
	tests := []struct {
		name    string
		content string
		terms   []string
		want    string
	}{
		{
			name:    "single term",
			content: "deploying on kubernetes clusters",
			terms:   []string{"kubernetes"},
			want:    "deploying on <mark>kubernetes</mark> clusters",
		},
		{
			name:    "case insensitive",
			content: "Kubernetes and KUBERNETES",
			terms:   []string{"kubernetes"},
			want:    "<mark>Kubernetes</mark> and <mark>KUBERNETES</mark>",
		},
		{
			name:    "longest term wins on overlap",
			content: "machine learning basics",
			terms:   []string{"learn", "learning"},
			want:    "machine <mark>learning</mark> basics",
		},
		{
			name:    "no terms leaves content untouched",
			content: "plain text",
			terms:   nil,
			want:    "plain text",
		},
		{
			name:    "regex metacharacters treated literally",
			content: "call foo() here",
			terms:   []string{"foo()"},
			want:    "call <mark>foo()</mark> here",
		},
		{
			name:    "term absent",
			content: "nothing relevant",
			terms:   []string{"kubernetes"},
			want:    "nothing relevant",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.content, tt.terms); got != tt.want {
				t.Errorf("Highlight() = %q, want %q", got, tt.want)
			}
		})
	}
}
