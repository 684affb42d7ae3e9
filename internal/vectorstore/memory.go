package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryStore is an in-memory vector store using brute-force inner product
// search. Suitable for tests and small-to-medium corpora.
type MemoryStore struct {
	dimensions int
	records    []*Record
	byID       map[string]int
	mu         sync.RWMutex
}

// NewMemoryStore creates an in-memory vector store with the given dimension.
func NewMemoryStore(dimensions int) (*MemoryStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryStore{
		dimensions: dimensions,
		records:    make([]*Record, 0),
		byID:       make(map[string]int),
	}, nil
}

// Add appends records. An existing record with the same ID is replaced.
func (m *MemoryStore) Add(ctx context.Context, records []*Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record id cannot be empty")
		}
		if len(r.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(r.Vector), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, r.Vector)
		stored := &Record{ID: r.ID, Content: r.Content, Vector: vec, Metadata: r.Metadata}
		if i, ok := m.byID[r.ID]; ok {
			m.records[i] = stored
			continue
		}
		m.byID[r.ID] = len(m.records)
		m.records = append(m.records, stored)
	}
	return nil
}

// SearchSimilar returns the top-k records by inner product (cosine
// similarity for normalized vectors), after applying metadata equality
// filters and the minimum similarity threshold.
func (m *MemoryStore) SearchSimilar(ctx context.Context, query []float32, topK int, filters map[string]any, minSimilarity float64) ([]*Hit, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if topK <= 0 || len(m.records) == 0 {
		return nil, nil
	}
	hits := make([]*Hit, 0, topK)
	for _, rec := range m.records {
		if !matchesFilters(rec.Metadata, filters) {
			continue
		}
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(query[j] * rec.Vector[j])
		}
		if dot < minSimilarity {
			continue
		}
		hits = append(hits, &Hit{ID: rec.ID, Content: rec.Content, Score: dot, Metadata: rec.Metadata})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// matchesFilters reports whether metadata satisfies every filter criterion.
// String filter values match string metadata case-sensitively; other values
// compare via fmt.Sprint for tolerance of JSON numeric types.
func matchesFilters(metadata, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Remove removes records by ID. Unknown IDs are ignored.
func (m *MemoryStore) Remove(ctx context.Context, ids []string) error {
	removeSet := make(map[string]bool)
	for _, id := range ids {
		removeSet[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]*Record, 0, len(m.records))
	m.byID = make(map[string]int)
	for _, rec := range m.records {
		if removeSet[rec.ID] {
			continue
		}
		m.byID[rec.ID] = len(kept)
		kept = append(kept, rec)
	}
	m.records = kept
	return nil
}

// persistedStore is the on-disk JSON layout.
type persistedStore struct {
	Dimensions int       `json:"dimensions"`
	Records    []*Record `json:"records"`
}

// Save persists the store to path. Directory is created if needed.
func (m *MemoryStore) Save(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create store file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(&persistedStore{
		Dimensions: m.dimensions,
		Records:    m.records,
	}); err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	return nil
}

// Load reads the store from path and replaces the in-memory contents.
// Dimensions must match. If the file does not exist, no error is returned
// and the store is unchanged.
func (m *MemoryStore) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()
	var persisted persistedStore
	if err := json.NewDecoder(f).Decode(&persisted); err != nil {
		return fmt.Errorf("decode store: %w", err)
	}
	if persisted.Dimensions != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, store expects %d", persisted.Dimensions, m.dimensions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = persisted.Records
	m.byID = make(map[string]int, len(m.records))
	for i, rec := range m.records {
		m.byID[rec.ID] = i
	}
	return nil
}

// Size returns the number of records in the store.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
