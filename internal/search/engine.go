package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/embedding"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/storage"
	"github.com/hyperjump/atsume/internal/vectorstore"
	"github.com/hyperjump/atsume/pkg/utils"
)

// Engine runs semantic, lexical, and hybrid retrieval over a vector store
// and a chunk store, with rank fusion, boosting, and highlighting.
type Engine struct {
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	docs      storage.DocumentLookup
	lexical   *LexicalRetriever
	booster   *Booster
	stats     *Stats
	weights   FusionWeights
	estimator TokenEstimator
	config    *config.SearchConfig
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTokenEstimator overrides the default len/4 heuristic used for context
// assembly budgeting.
func WithTokenEstimator(est TokenEstimator) EngineOption {
	return func(e *Engine) { e.estimator = est }
}

// WithBooster overrides the default booster (used in tests to pin the clock).
func WithBooster(b *Booster) EngineOption {
	return func(e *Engine) { e.booster = b }
}

// NewEngine creates a search engine with the given dependencies. stats is
// shared process-wide and must be created once at startup.
func NewEngine(
	embedder embedding.Embedder,
	store vectorstore.VectorStore,
	docs storage.DocumentLookup,
	chunks storage.ChunkLister,
	cfg *config.SearchConfig,
	stats *Stats,
	logger *zap.Logger,
	opts ...EngineOption,
) *Engine {
	weights := FusionWeights{
		SemanticRank: cfg.SemanticRankWeight,
		LexicalRank:  cfg.LexicalRankWeight,
		SemanticSim:  cfg.SemanticScoreWeight,
		LexicalSim:   cfg.LexicalScoreWeight,
	}
	e := &Engine{
		embedder:  embedder,
		store:     store,
		docs:      docs,
		lexical:   NewLexicalRetriever(chunks, cfg.CandidatePoolSize),
		booster:   NewBooster(),
		stats:     stats,
		weights:   weights,
		estimator: HeuristicEstimator{},
		config:    cfg,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search validates the query, dispatches by search type, and returns ranked
// results. Hybrid search fans out the semantic and lexical paths
// concurrently; a lexical failure degrades to semantic-only results while a
// semantic failure is fatal (embedding is required).
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var results []*models.SearchResult
	var err error
	switch query.SearchType {
	case models.SearchTypeSemantic:
		results, err = e.semanticCandidates(ctx, query)
	case models.SearchTypeLexical:
		results, err = e.lexicalCandidates(ctx, query)
	case models.SearchTypeHybrid:
		results, err = e.hybridCandidates(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	results = e.finalize(ctx, query, results)
	elapsed := time.Since(startTime)
	e.stats.Record(query.SearchType, elapsed)

	return &models.SearchResponse{
		Query:          query.Query,
		SearchType:     query.SearchType,
		Results:        results,
		TotalResults:   len(results),
		SearchTime:     elapsed.Seconds(),
		FiltersApplied: query.Filters.Applied(),
	}, nil
}

// semanticCandidates embeds the query, fetches candidates from the vector
// store, reconstructs chunks (skipping malformed records), and applies the
// local filter pass.
func (e *Engine) semanticCandidates(ctx context.Context, query *models.SearchQuery) ([]*models.SearchResult, error) {
	vec, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, embeddingError(err)
	}
	hits, err := e.store.SearchSimilar(ctx, vec, query.CandidateLimit(), storeFilters(query.Filters), query.MinSimilarity)
	if err != nil {
		return nil, vectorStoreError(err)
	}
	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := models.ChunkFromMetadata(hit.ID, hit.Content, hit.Metadata)
		if err != nil {
			// Partial results are preferred over total failure.
			e.logger.Warn("skipping malformed vector store record",
				zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		results = append(results, &models.SearchResult{
			Chunk:           chunk,
			SimilarityScore: utils.Clamp01(hit.Score),
		})
	}
	return applyLocalFilters(results, query.Filters), nil
}

// lexicalCandidates runs the BM25-like retriever and the local filter pass.
func (e *Engine) lexicalCandidates(ctx context.Context, query *models.SearchQuery) ([]*models.SearchResult, error) {
	results, err := e.lexical.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return applyLocalFilters(results, query.Filters), nil
}

// hybridCandidates runs the semantic and lexical paths concurrently and
// fuses the two ranked lists.
func (e *Engine) hybridCandidates(ctx context.Context, query *models.SearchQuery) ([]*models.SearchResult, error) {
	var (
		semantic    []*models.SearchResult
		lexical     []*models.SearchResult
		semanticErr error
		lexicalErr  error
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semantic, semanticErr = e.semanticCandidates(ctx, query)
	}()
	go func() {
		defer wg.Done()
		lexical, lexicalErr = e.lexicalCandidates(ctx, query)
	}()
	wg.Wait()

	if semanticErr != nil {
		return nil, semanticErr
	}
	if lexicalErr != nil {
		// Degrade to semantic-only rather than failing the request.
		e.logger.Warn("lexical path failed, degrading hybrid search to semantic-only",
			zap.Error(lexicalErr))
		return semantic, nil
	}
	return Fuse(semantic, lexical, e.weights), nil
}

// finalize boosts, filters by document type, truncates to top_k, assigns
// ranks, highlights, and attaches source documents.
func (e *Engine) finalize(ctx context.Context, query *models.SearchQuery, results []*models.SearchResult) []*models.SearchResult {
	e.booster.Rescore(query.Query, results)

	docCache := make(map[string]*models.Document)
	if query.Filters != nil && len(query.Filters.DocumentTypes) > 0 {
		results = e.filterByDocumentType(ctx, results, query.Filters.DocumentTypes, docCache)
	}
	if len(results) > query.TopK {
		results = results[:query.TopK]
	}

	var terms []string
	if query.Highlight {
		terms = ExtractTerms(query.Query)
	}
	for i, result := range results {
		result.Rank = i + 1
		if query.Highlight {
			result.HighlightedContent = Highlight(result.Chunk.Content, terms)
		}
		result.Document = e.lookupDocument(ctx, result.Chunk.DocumentID, docCache)
	}
	return results
}

// lookupDocument attributes a chunk to its source document, caching per
// request. A failed lookup is logged and leaves the document nil.
func (e *Engine) lookupDocument(ctx context.Context, docID string, cache map[string]*models.Document) *models.Document {
	if doc, ok := cache[docID]; ok {
		return doc
	}
	doc, err := e.docs.GetDocument(ctx, docID)
	if err != nil {
		e.logger.Warn("document lookup failed", zap.String("document_id", docID), zap.Error(err))
		cache[docID] = nil
		return nil
	}
	cache[docID] = doc
	return doc
}

func (e *Engine) filterByDocumentType(ctx context.Context, results []*models.SearchResult, types []string, cache map[string]*models.Document) []*models.SearchResult {
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	filtered := results[:0]
	for _, result := range results {
		doc := e.lookupDocument(ctx, result.Chunk.DocumentID, cache)
		if doc == nil || !wanted[doc.FileType] {
			continue
		}
		result.Document = doc
		filtered = append(filtered, result)
	}
	return filtered
}

// storeFilters translates single-valued criteria into the vector store's
// where clause. Multi-valued document ID membership is deferred to the
// local pass because the store does not support IN.
func storeFilters(filters *models.SearchFilters) map[string]any {
	if filters.Empty() {
		return nil
	}
	where := make(map[string]any)
	if len(filters.DocumentIDs) == 1 {
		where[models.MetaKeyDocumentID] = filters.DocumentIDs[0]
	}
	if len(filters.Languages) == 1 {
		where[models.MetaKeyLanguage] = filters.Languages[0]
	}
	return where
}

// applyLocalFilters applies the criteria the store cannot evaluate:
// multi-document-id membership, multi-language membership, and the date
// range.
func applyLocalFilters(results []*models.SearchResult, filters *models.SearchFilters) []*models.SearchResult {
	if filters.Empty() {
		return results
	}
	var docIDs map[string]bool
	if len(filters.DocumentIDs) > 1 {
		docIDs = make(map[string]bool, len(filters.DocumentIDs))
		for _, id := range filters.DocumentIDs {
			docIDs[id] = true
		}
	}
	var languages map[string]bool
	if len(filters.Languages) > 1 {
		languages = make(map[string]bool, len(filters.Languages))
		for _, lang := range filters.Languages {
			languages[lang] = true
		}
	}
	filtered := results[:0]
	for _, result := range results {
		chunk := result.Chunk
		if docIDs != nil && !docIDs[chunk.DocumentID] {
			continue
		}
		if languages != nil && !languages[chunk.Language] {
			continue
		}
		if filters.DateFrom != nil && chunk.CreatedAt.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && chunk.CreatedAt.After(*filters.DateTo) {
			continue
		}
		filtered = append(filtered, result)
	}
	return filtered
}

// Suggest returns query suggestions for a partial query.
func (e *Engine) Suggest(partial string) []string {
	return Suggestions(partial, e.config.SuggestionLimit)
}

// Stats returns a snapshot of the aggregate search counters.
func (e *Engine) Stats() models.SearchStats {
	return e.stats.Snapshot()
}

// VectorStoreSize returns the number of records in the vector store.
func (e *Engine) VectorStoreSize() int {
	return e.store.Size()
}
