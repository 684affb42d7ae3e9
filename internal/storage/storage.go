// Package storage defines the persistence interface for documents and chunks.
package storage

import (
	"context"

	"github.com/hyperjump/atsume/internal/models"
)

// DocumentLookup attributes a chunk to its source document. The search
// engine depends on this capability only, never on the full store.
type DocumentLookup interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
}

// ChunkLister supplies the lexical retriever's candidate pool.
type ChunkLister interface {
	ListChunks(ctx context.Context, documentIDs []string, limit int) ([]*models.Chunk, error)
}

// Store defines document and chunk persistence operations.
type Store interface {
	DocumentLookup
	ChunkLister

	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// Chunk operations
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error)
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error
	DeleteChunksByDocumentID(ctx context.Context, docID string) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
