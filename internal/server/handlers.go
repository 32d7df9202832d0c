package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("mode", string(query.Mode)),
		zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		if errors.Is(err, models.ErrEmptyQuery) || errors.Is(err, models.ErrInvalidMode) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Content == "" && input.Title == "" {
		s.respondError(w, http.StatusBadRequest, "content or title is required")
		return
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	doc := &models.Document{
		ID:        input.ID,
		Title:     input.Title,
		FileName:  input.FileName,
		Category:  input.Category,
		Priority:  input.Priority,
		OwnerID:   input.OwnerID,
		Content:   input.Content,
		Excerpt:   input.Excerpt,
		Metadata:  input.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.logger.Debug("create document request", zap.String("id", doc.ID), zap.String("title", doc.Title))
	if err := s.storage.CreateDocument(r.Context(), doc); err != nil {
		s.logger.Error("create document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ack, err := s.maintainer.IndexDocument(r.Context(), doc.ID, false)
	if err != nil {
		s.logger.Warn("indexing not scheduled for new document",
			zap.String("id", doc.ID), zap.Error(err))
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":                doc.ID,
		"status":            "created",
		"indexing_accepted": ack.Accepted,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("get document failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.storage.DeleteDocument(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("delete document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	removed, err := s.maintainer.RemoveFromIndex(r.Context(), id)
	if err != nil {
		s.logger.Warn("remove from index failed", zap.String("id", id), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"removed": removed,
	})
}

func (s *Server) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force := r.URL.Query().Get("force") == "true"
	s.logger.Debug("index document request", zap.String("id", id), zap.Bool("force", force))
	ack, err := s.maintainer.IndexDocument(r.Context(), id, force)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("index document failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusAccepted
	if ack.AlreadyIndexed {
		status = http.StatusOK
	}
	s.respondJSON(w, status, ack)
}

func (s *Server) handleRemoveFromIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.maintainer.RemoveFromIndex(r.Context(), id)
	if err != nil {
		s.logger.Error("remove from index failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	ack, err := s.maintainer.ReindexAll(r.Context())
	if err != nil {
		s.logger.Error("reindex failed to start", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusAccepted
	if !ack.Started {
		status = http.StatusConflict
	}
	s.respondJSON(w, status, ack)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := s.maintainer.Stats(ctx)
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("stats: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"index":            stats,
		"stored_documents": docCount,
		"reindexing":       s.maintainer.Reindexing(),
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.VectorIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"index":  s.maintainer.Stats(r.Context()).Status,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
