package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/atsume/internal/models"
)

func newTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func insertDocument(t *testing.T, store *SQLiteStore, id, filename, fileType string) {
	t.Helper()
	doc := &models.Document{ID: id, Filename: filename, FileType: fileType, Language: "en"}
	if err := store.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
}

func testChunks(docID string, n int) []*models.Chunk {
	chunks := make([]*models.Chunk, n)
	for i := range chunks {
		chunks[i] = &models.Chunk{
			ID:         docID + "-chunk-" + string(rune('a'+i)),
			DocumentID: docID,
			Content:    "chunk content number " + string(rune('a'+i)),
			StartIndex: i * 100,
			EndIndex:   (i + 1) * 100,
			ChunkIndex: i,
		}
	}
	return chunks
}

func TestDocumentLifecycle(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	insertDocument(t, store, "doc-1", "guide.md", "md")

	doc, err := store.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Filename != "guide.md" || doc.FileType != "md" || doc.Language != "en" {
		t.Errorf("round trip lost fields: %+v", doc)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on insert")
	}

	if err := store.DeleteDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := store.GetDocument(ctx, "doc-1"); err == nil {
		t.Error("expected error fetching a deleted document")
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	store := newTestDB(t)
	if _, err := store.GetDocument(context.Background(), "absent"); err == nil {
		t.Error("expected error for unknown document")
	}
}

func TestListDocumentsPagination(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		insertDocument(t, store, id, id+".md", "md")
	}

	docs, err := store.ListDocuments(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("page size = %d, want 2", len(docs))
	}
	docs, err = store.ListDocuments(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("second page size = %d, want 1", len(docs))
	}
}

func TestChunkBatchAndFetch(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	insertDocument(t, store, "doc-1", "guide.md", "md")

	chunks := testChunks("doc-1", 3)
	chunks[1].SectionTitle = "Installation"
	chunks[1].PageNumber = 2
	chunks[1].TokenCount = 42
	if err := store.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}

	got, err := store.GetChunksByDocumentID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetChunksByDocumentID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d chunks, want 3", len(got))
	}
	for i, chunk := range got {
		if chunk.ChunkIndex != i {
			t.Errorf("chunks not in index order at %d: %d", i, chunk.ChunkIndex)
		}
	}
	if got[1].SectionTitle != "Installation" || got[1].PageNumber != 2 || got[1].TokenCount != 42 {
		t.Errorf("optional fields lost: %+v", got[1])
	}

	single, err := store.GetChunk(ctx, chunks[0].ID)
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if single.Content != chunks[0].Content {
		t.Errorf("Content = %q, want %q", single.Content, chunks[0].Content)
	}
}

func TestListChunksFiltersByDocument(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	insertDocument(t, store, "doc-1", "a.md", "md")
	insertDocument(t, store, "doc-2", "b.md", "md")
	if err := store.BatchCreateChunks(ctx, testChunks("doc-1", 2)); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}
	if err := store.BatchCreateChunks(ctx, testChunks("doc-2", 3)); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}

	all, err := store.ListChunks(ctx, nil, 100)
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("unfiltered pool = %d, want 5", len(all))
	}

	scoped, err := store.ListChunks(ctx, []string{"doc-2"}, 100)
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(scoped) != 3 {
		t.Errorf("scoped pool = %d, want 3", len(scoped))
	}
	for _, chunk := range scoped {
		if chunk.DocumentID != "doc-2" {
			t.Errorf("chunk %s leaked into scoped pool", chunk.ID)
		}
	}

	capped, err := store.ListChunks(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ListChunks: %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("capped pool = %d, want 2", len(capped))
	}
}

func TestDeleteChunksByDocumentID(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	insertDocument(t, store, "doc-1", "a.md", "md")
	if err := store.BatchCreateChunks(ctx, testChunks("doc-1", 2)); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}
	if err := store.DeleteChunksByDocumentID(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteChunksByDocumentID: %v", err)
	}
	n, err := store.CountChunks(ctx)
	if err != nil {
		t.Fatalf("CountChunks: %v", err)
	}
	if n != 0 {
		t.Errorf("CountChunks = %d, want 0", n)
	}
}

func TestCounts(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	insertDocument(t, store, "doc-1", "a.md", "md")
	if err := store.BatchCreateChunks(ctx, testChunks("doc-1", 4)); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}

	docs, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if docs != 1 {
		t.Errorf("CountDocuments = %d, want 1", docs)
	}
	chunks, err := store.CountChunks(ctx)
	if err != nil {
		t.Fatalf("CountChunks: %v", err)
	}
	if chunks != 4 {
		t.Errorf("CountChunks = %d, want 4", chunks)
	}
}
