package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/atsume/internal/embedding"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/storage"
	"github.com/hyperjump/atsume/internal/vectorstore"
)

// Batch size and parallelism for embedding calls during ingestion.
const (
	embedBatchSize   = 32
	embedConcurrency = 4
)

// Ingester turns extracted document text into stored chunks and vectors.
type Ingester struct {
	store    storage.Store
	embedder embedding.Embedder
	vectors  vectorstore.VectorStore
	chunker  *Chunker
	model    string
	logger   *zap.Logger
}

// NewIngester creates an ingester with the given dependencies. model names
// the embedding model recorded on each chunk.
func NewIngester(
	store storage.Store,
	embedder embedding.Embedder,
	vectors vectorstore.VectorStore,
	chunker *Chunker,
	model string,
	logger *zap.Logger,
) *Ingester {
	return &Ingester{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		chunker:  chunker,
		model:    model,
		logger:   logger,
	}
}

// IngestDocument chunks, embeds, and stores a document. Re-ingesting an
// existing ID replaces its chunks and vectors.
func (ing *Ingester) IngestDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("document content cannot be empty")
	}
	if input.Filename == "" {
		return nil, fmt.Errorf("document filename is required")
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	fileType := input.FileType
	if fileType == "" {
		fileType = strings.TrimPrefix(filepath.Ext(input.Filename), ".")
	}
	doc := &models.Document{
		ID:       input.ID,
		Filename: input.Filename,
		FileType: fileType,
		Title:    input.Title,
		Language: input.Language,
	}

	// Replace any previous version of this document.
	_ = ing.DeleteDocument(ctx, doc.ID)

	if err := ing.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	chunks := ing.chunker.Chunk(doc.ID, input.Content)
	if len(chunks) == 0 {
		chunks = []*models.Chunk{{
			ID:         doc.ID + "_0",
			DocumentID: doc.ID,
			Content:    strings.TrimSpace(input.Content),
			StartIndex: 0,
			EndIndex:   len(input.Content),
			ChunkIndex: 0,
		}}
	}
	now := time.Now()
	for _, chunk := range chunks {
		chunk.Language = input.Language
		chunk.EmbeddingModel = ing.model
		chunk.TokenCount = len(chunk.Content) / 4
		chunk.CreatedAt = now
	}

	if err := ing.embedChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if err := ing.store.BatchCreateChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	records := make([]*vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		meta := chunk.StoreMetadata()
		meta[models.MetaKeyFileType] = doc.FileType
		records[i] = &vectorstore.Record{
			ID:       chunk.ID,
			Content:  chunk.Content,
			Vector:   chunk.Embedding,
			Metadata: meta,
		}
	}
	if err := ing.vectors.Add(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to index vectors: %w", err)
	}
	ing.logger.Debug("document ingested",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(chunks)),
	)
	return doc, nil
}

// embedChunks embeds all chunks in bounded parallel batches.
func (ing *Ingester) embedChunks(ctx context.Context, chunks []*models.Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, chunk := range batch {
				texts[i] = chunk.Content
			}
			embeddings, err := ing.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			for i := range batch {
				batch[i].Embedding = embeddings[i]
			}
			return nil
		})
	}
	return g.Wait()
}

// DeleteDocument removes a document, its chunks, and their vectors.
func (ing *Ingester) DeleteDocument(ctx context.Context, docID string) error {
	chunks, err := ing.store.GetChunksByDocumentID(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(chunks) > 0 {
		ids := make([]string, len(chunks))
		for i, chunk := range chunks {
			ids[i] = chunk.ID
		}
		if err := ing.vectors.Remove(ctx, ids); err != nil {
			return fmt.Errorf("failed to remove vectors: %w", err)
		}
	}
	if err := ing.store.DeleteChunksByDocumentID(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := ing.store.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
