package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("type", string(query.SearchType)),
		zap.Int("top_k", query.TopK),
	)
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.metrics.ObserveSearch(string(response.SearchType), response.SearchTime)
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req models.ContextRetrievalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("context request",
		zap.String("query", req.Query),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("max_chunks", req.MaxChunks),
	)
	response, err := s.engine.AssembleContext(r.Context(), &req)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.metrics.contextRequests.Inc()
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	partial := r.URL.Query().Get("q")
	suggestions := s.engine.Suggest(partial)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"query":       partial,
		"suggestions": suggestions,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ingest document request",
		zap.String("id", input.ID),
		zap.String("filename", input.Filename),
	)
	doc, err := s.ingester.IngestDocument(r.Context(), &input)
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.ingestedDocs.Inc()
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": doc.ID, "status": "ingested"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.ingester.DeleteDocument(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_store_size": s.engine.VectorStoreSize(),
	})
}

// respondSearchError maps engine errors to HTTP statuses: validation
// failures are the caller's fault, collaborator failures are upstream.
func (s *Server) respondSearchError(w http.ResponseWriter, err error) {
	var validationErr *search.ValidationError
	if errors.As(err, &validationErr) {
		s.respondError(w, http.StatusBadRequest, validationErr.Error())
		return
	}
	var engineErr *search.SearchEngineError
	if errors.As(err, &engineErr) {
		s.logger.Error("search failed", zap.String("kind", string(engineErr.Kind)), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, engineErr.Error())
		return
	}
	s.logger.Error("search failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
