package search

import "fmt"

// ValidationError reports a malformed query or request, rejected before any
// external call is made. Never retried.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ErrorKind identifies which external collaborator failed.
type ErrorKind string

const (
	KindEmbedding   ErrorKind = "embedding"
	KindVectorStore ErrorKind = "vector_store"
)

// SearchEngineError wraps a failed external call. Retry policy belongs to
// the caller; the engine never retries locally.
type SearchEngineError struct {
	Kind ErrorKind
	Err  error
}

func (e *SearchEngineError) Error() string {
	return fmt.Sprintf("search engine: %s failed: %v", e.Kind, e.Err)
}

func (e *SearchEngineError) Unwrap() error {
	return e.Err
}

func embeddingError(err error) error {
	return &SearchEngineError{Kind: KindEmbedding, Err: err}
}

func vectorStoreError(err error) error {
	return &SearchEngineError{Kind: KindVectorStore, Err: err}
}
