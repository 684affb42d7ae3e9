package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/embedding"
	"github.com/hyperjump/atsume/internal/ingest"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/search"
	"github.com/hyperjump/atsume/internal/storage"
	"github.com/hyperjump/atsume/internal/vectorstore"
)

const testDims = 8

// newTestServer wires a full stack on a mock embedder and temp storage.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	vectors, err := vectorstore.NewMemoryStore(testDims)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	embedder := embedding.NewMockEmbedder(testDims)
	logger := zap.NewNop()

	var cfg config.Config
	config.ApplyDefaults(&cfg)

	engine := search.NewEngine(embedder, vectors, store, store, &cfg.Search, search.NewStats(), logger)
	ingester := ingest.NewIngester(store, embedder, vectors,
		ingest.NewChunker(cfg.Search.ChunkSize, cfg.Search.ChunkOverlap), cfg.Embedding.Model, logger)

	srv := httptest.NewServer(NewServer(engine, ingester, store, &cfg.Server, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// ingestSample ingests a single-sentence document and returns its ID. The
// content is one sentence so it becomes exactly one chunk whose embedding
// matches an identical query under the deterministic mock embedder.
const sampleContent = "Rolling updates replace pods gradually without downtime."

func ingestSample(t *testing.T, baseURL string) string {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/v1/documents", &models.DocumentInput{
		Filename: "deploy.md",
		Language: "en",
		Content:  sampleContent,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest status = %d, want 201", resp.StatusCode)
	}
	var created map[string]string
	decode(t, resp, &created)
	if created["id"] == "" {
		t.Fatal("ingest response missing document id")
	}
	return created["id"]
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	docID := ingestSample(t, srv.URL)

	resp := postJSON(t, srv.URL+"/api/v1/search", &models.SearchQuery{
		Query:     sampleContent,
		Highlight: true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var searchResp models.SearchResponse
	decode(t, resp, &searchResp)
	if searchResp.TotalResults == 0 {
		t.Fatal("expected results for an identical query")
	}
	top := searchResp.Results[0]
	if top.Chunk.DocumentID != docID {
		t.Errorf("top hit document = %s, want %s", top.Chunk.DocumentID, docID)
	}
	if top.Document == nil || top.Document.Filename != "deploy.md" {
		t.Error("top hit should carry its source document")
	}
	if !strings.Contains(top.HighlightedContent, "<mark>") {
		t.Errorf("expected highlighting, got %q", top.HighlightedContent)
	}
	if top.Rank != 1 {
		t.Errorf("top rank = %d, want 1", top.Rank)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/search", &models.SearchQuery{Query: ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp.StatusCode)
	}

	raw, err := http.Post(srv.URL+"/api/v1/search", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer raw.Body.Close()
	if raw.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", raw.StatusCode)
	}
}

func TestContextEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ingestSample(t, srv.URL)

	resp := postJSON(t, srv.URL+"/api/v1/context", &models.ContextRetrievalRequest{
		Query:     sampleContent,
		MaxTokens: 500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var ctxResp models.ContextRetrievalResponse
	decode(t, resp, &ctxResp)
	if !strings.Contains(ctxResp.Context, "[Source") {
		t.Errorf("context missing source header: %q", ctxResp.Context)
	}
	if len(ctxResp.ChunksUsed) == 0 {
		t.Error("expected chunks in context response")
	}
	if ctxResp.TotalTokens <= 0 || ctxResp.TotalTokens > 500 {
		t.Errorf("TotalTokens = %d, want within (0, 500]", ctxResp.TotalTokens)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv.URL+"/api/v1/suggestions?q=docker")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload struct {
		Query       string   `json:"query"`
		Suggestions []string `json:"suggestions"`
	}
	decode(t, resp, &payload)
	if payload.Query != "docker" {
		t.Errorf("echoed query = %q", payload.Query)
	}
	if len(payload.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ingestSample(t, srv.URL)
	postJSON(t, srv.URL+"/api/v1/search", &models.SearchQuery{Query: "anything"})

	resp := getJSON(t, srv.URL+"/api/v1/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var stats models.SearchStats
	decode(t, resp, &stats)
	if stats.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d, want 1", stats.TotalSearches)
	}
}

func TestDocumentEndpoints(t *testing.T) {
	srv := newTestServer(t)
	docID := ingestSample(t, srv.URL)

	resp := getJSON(t, fmt.Sprintf("%s/api/v1/documents/%s", srv.URL, docID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	var doc models.Document
	decode(t, resp, &doc)
	if doc.Filename != "deploy.md" || doc.FileType != "md" {
		t.Errorf("document = %+v", doc)
	}

	if resp := getJSON(t, srv.URL+"/api/v1/documents/absent"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown document status = %d, want 404", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/documents/%s", srv.URL, docID), nil)
	if err != nil {
		t.Fatalf("build delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", delResp.StatusCode)
	}

	if resp := getJSON(t, fmt.Sprintf("%s/api/v1/documents/%s", srv.URL, docID)); resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted document status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ingestSample(t, srv.URL)

	resp := getJSON(t, srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var status struct {
		Documents       int64 `json:"documents"`
		Chunks          int64 `json:"chunks"`
		VectorStoreSize int   `json:"vector_store_size"`
	}
	decode(t, resp, &status)
	if status.Documents != 1 {
		t.Errorf("documents = %d, want 1", status.Documents)
	}
	if status.Chunks == 0 || status.VectorStoreSize == 0 {
		t.Errorf("chunks = %d, vector store = %d; want nonzero", status.Chunks, status.VectorStoreSize)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	if resp := getJSON(t, srv.URL+"/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
	if resp := getJSON(t, srv.URL+"/metrics"); resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", resp.StatusCode)
	}
}

func TestIngestEndpointValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/documents", &models.DocumentInput{Filename: "a.md"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("empty content status = %d, want 500", resp.StatusCode)
	}
}
