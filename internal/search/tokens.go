package search

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator estimates the token cost of a text fragment for context
// budgeting.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// HeuristicEstimator estimates tokens as len(text)/4. A character-based
// heuristic, not a real tokenizer; the default estimator.
type HeuristicEstimator struct{}

// EstimateTokens returns len(text)/4.
func (HeuristicEstimator) EstimateTokens(text string) int {
	return len(text) / 4
}

// charsPerToken converts a remaining token budget back into characters for
// partial chunk inclusion.
const charsPerToken = 4

// TiktokenEstimator counts tokens with a real BPE encoding. More accurate
// than the heuristic but slower; opt-in via configuration.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the named encoding (e.g. "cl100k_base").
func NewTiktokenEstimator(encodingName string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TiktokenEstimator{encoding: enc}, nil
}

// EstimateTokens returns the exact token count under the loaded encoding.
func (e *TiktokenEstimator) EstimateTokens(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}
