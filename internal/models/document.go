// Package models defines core data structures for documents, chunks, queries, and search results.
package models

import (
	"fmt"
	"time"
)

// Document identifies the source a chunk was extracted from.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Filename  string    `json:"filename" db:"filename"`
	FileType  string    `json:"file_type" db:"file_type"`
	Title     string    `json:"title,omitempty" db:"title"`
	Language  string    `json:"language,omitempty" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Chunk is a contiguous span of text extracted from a document, the atomic
// unit of retrieval. StartIndex and EndIndex are offsets into the source
// document; ChunkIndex is the sequence number within the document.
type Chunk struct {
	ID             string    `json:"id" db:"id"`
	DocumentID     string    `json:"document_id" db:"document_id"`
	Content        string    `json:"content" db:"content"`
	StartIndex     int       `json:"start_index" db:"start_index"`
	EndIndex       int       `json:"end_index" db:"end_index"`
	ChunkIndex     int       `json:"chunk_index" db:"chunk_index"`
	SectionTitle   string    `json:"section_title,omitempty" db:"section_title"`
	PageNumber     int       `json:"page_number,omitempty" db:"page_number"`
	Language       string    `json:"language,omitempty" db:"language"`
	TokenCount     int       `json:"token_count,omitempty" db:"token_count"`
	EmbeddingModel string    `json:"embedding_model,omitempty" db:"embedding_model"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Embedding is populated during ingestion only; never serialized.
	Embedding []float32 `json:"-" db:"-"`
}

// Validate checks the chunk's structural invariants.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return fmt.Errorf("chunk content cannot be empty")
	}
	if c.StartIndex >= c.EndIndex {
		return fmt.Errorf("chunk start index %d must be less than end index %d", c.StartIndex, c.EndIndex)
	}
	return nil
}

// Metadata keys mirrored into the vector store so semantic hits can be
// reconstructed without a second storage round trip.
const (
	MetaKeyDocumentID   = "document_id"
	MetaKeyChunkIndex   = "chunk_index"
	MetaKeyStartIndex   = "start_index"
	MetaKeyEndIndex     = "end_index"
	MetaKeySectionTitle = "section_title"
	MetaKeyPageNumber   = "page_number"
	MetaKeyLanguage     = "language"
	MetaKeyCreatedAt    = "created_at"
	MetaKeyFileType     = "file_type"
)

// StoreMetadata returns the metadata map stored alongside the chunk's vector.
func (c *Chunk) StoreMetadata() map[string]any {
	meta := map[string]any{
		MetaKeyDocumentID: c.DocumentID,
		MetaKeyChunkIndex: c.ChunkIndex,
		MetaKeyStartIndex: c.StartIndex,
		MetaKeyEndIndex:   c.EndIndex,
	}
	if c.SectionTitle != "" {
		meta[MetaKeySectionTitle] = c.SectionTitle
	}
	if c.PageNumber > 0 {
		meta[MetaKeyPageNumber] = c.PageNumber
	}
	if c.Language != "" {
		meta[MetaKeyLanguage] = c.Language
	}
	if !c.CreatedAt.IsZero() {
		meta[MetaKeyCreatedAt] = c.CreatedAt.Format(time.RFC3339)
	}
	return meta
}

// ChunkFromMetadata reconstructs a chunk from a vector store hit. Returns an
// error when the metadata is missing required fields so the caller can skip
// the record instead of failing the whole search.
func ChunkFromMetadata(id, content string, meta map[string]any) (*Chunk, error) {
	if id == "" || content == "" {
		return nil, fmt.Errorf("chunk %q: missing id or content", id)
	}
	docID, _ := meta[MetaKeyDocumentID].(string)
	if docID == "" {
		return nil, fmt.Errorf("chunk %q: metadata missing document id", id)
	}
	chunk := &Chunk{
		ID:         id,
		DocumentID: docID,
		Content:    content,
		StartIndex: metadataInt(meta, MetaKeyStartIndex),
		EndIndex:   metadataInt(meta, MetaKeyEndIndex),
		ChunkIndex: metadataInt(meta, MetaKeyChunkIndex),
		PageNumber: metadataInt(meta, MetaKeyPageNumber),
	}
	if chunk.EndIndex <= chunk.StartIndex {
		chunk.EndIndex = chunk.StartIndex + len(content)
	}
	if title, ok := meta[MetaKeySectionTitle].(string); ok {
		chunk.SectionTitle = title
	}
	if lang, ok := meta[MetaKeyLanguage].(string); ok {
		chunk.Language = lang
	}
	if created, ok := meta[MetaKeyCreatedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			chunk.CreatedAt = t
		}
	}
	return chunk, nil
}

// metadataInt reads an int-valued metadata field, tolerating the numeric
// types a JSON round trip can produce.
func metadataInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// DocumentInput is the input for ingesting a document. Content is
// already-extracted text; parsing happens upstream.
type DocumentInput struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	FileType string `json:"file_type,omitempty"`
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}
