// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/atsume/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		file_type TEXT,
		title TEXT,
		language TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		start_index INTEGER NOT NULL,
		end_index INTEGER NOT NULL,
		chunk_index INTEGER NOT NULL,
		section_title TEXT,
		page_number INTEGER,
		language TEXT,
		token_count INTEGER,
		embedding_model TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_chunk ON chunks(document_id, chunk_index);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document.
func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, file_type, title, language, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.FileType, doc.Title, doc.Language, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// GetDocument returns a document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, file_type, title, language, created_at, updated_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Filename, &doc.FileType, &doc.Title, &doc.Language, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document by ID.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// ListDocuments returns documents with offset and limit.
func (s *SQLiteStore) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, file_type, title, language, created_at, updated_at
		 FROM documents ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.FileType, &doc.Title, &doc.Language, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

const chunkColumns = `id, document_id, content, start_index, end_index, chunk_index,
	section_title, page_number, language, token_count, embedding_model, created_at`

func scanChunk(scan func(...any) error) (*models.Chunk, error) {
	var chunk models.Chunk
	var sectionTitle, language, embeddingModel sql.NullString
	var pageNumber, tokenCount sql.NullInt64
	err := scan(
		&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.StartIndex, &chunk.EndIndex, &chunk.ChunkIndex,
		&sectionTitle, &pageNumber, &language, &tokenCount, &embeddingModel,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	chunk.SectionTitle = sectionTitle.String
	chunk.PageNumber = int(pageNumber.Int64)
	chunk.Language = language.String
	chunk.TokenCount = int(tokenCount.Int64)
	chunk.EmbeddingModel = embeddingModel.String
	return &chunk, nil
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStore) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	chunk, err := scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunksByDocumentID returns all chunks for a document in chunk order.
func (s *SQLiteStore) GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY chunk_index`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChunks(rows)
}

// ListChunks returns up to limit chunks, optionally restricted to the given
// document IDs. Used as the lexical retriever's candidate pool.
func (s *SQLiteStore) ListChunks(ctx context.Context, documentIDs []string, limit int) ([]*models.Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks`
	var args []any
	if len(documentIDs) > 0 {
		placeholders := strings.Repeat("?,", len(documentIDs))
		query += ` WHERE document_id IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, id := range documentIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChunks(rows)
}

func collectChunks(rows *sql.Rows) ([]*models.Chunk, error) {
	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// BatchCreateChunks inserts chunks in a single transaction.
func (s *SQLiteStore) BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (`+chunkColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, chunk := range chunks {
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.StartIndex, chunk.EndIndex, chunk.ChunkIndex,
			chunk.SectionTitle, chunk.PageNumber, chunk.Language,
			chunk.TokenCount, chunk.EmbeddingModel, chunk.CreatedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteChunksByDocumentID removes all chunks for a document.
func (s *SQLiteStore) DeleteChunksByDocumentID(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID)
	return err
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
