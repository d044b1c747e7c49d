package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
	"github.com/hyperjump/bidsift/internal/storage"
)

type scoreRequest struct {
	Documents []models.DocumentInfo `json:"documents"`
	Trade     string                `json:"trade"`
}

type scoreResponse struct {
	Trade string `json:"trade"`
	// Scores mirror the order of the submitted documents.
	Scores []models.DocumentScore `json:"scores"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Trade == "" {
		s.respondError(w, http.StatusBadRequest, "trade is required")
		return
	}
	s.logger.Debug("score request", zap.String("trade", req.Trade), zap.Int("documents", len(req.Documents)))
	scores := s.scorer.ScoreDocuments(req.Documents, req.Trade)
	s.respondJSON(w, http.StatusOK, scoreResponse{Trade: req.Trade, Scores: scores})
}

type runRequest struct {
	Documents []models.DocumentInfo `json:"documents"`
	// Trades defaults to every registered trade when empty.
	Trades []string `json:"trades,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("run request", zap.Int("documents", len(req.Documents)), zap.Strings("trades", req.Trades))
	// A dropped client connection cancels the run; pending classifier
	// batches and unstarted fast-path work stop with it.
	result, err := s.runner.Run(r.Context(), req.Documents, req.Trades)
	if err != nil {
		s.logger.Error("run failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type extractRequest struct {
	Document models.DocumentInfo `json:"document"`
	Trade    string              `json:"trade,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Document.StoragePath == "" {
		s.respondError(w, http.StatusBadRequest, "document storage_path is required")
		return
	}
	// Unregistered trades extract without sign-type tagging.
	var p patterns.TradePatterns
	if req.Trade != "" {
		p, _ = s.registry.Get(req.Trade)
	}
	s.logger.Debug("extract request",
		zap.String("id", req.Document.ID),
		zap.String("path", req.Document.StoragePath),
		zap.String("trade", req.Trade))
	result := s.fastPath.TryFastPathExtraction(req.Document, p)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"trades": s.registry.Trades()})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run store not enabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "run store not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	summary, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "run not found")
		return
	}
	decisions, err := s.store.GetDecisions(r.Context(), id)
	if err != nil {
		s.logger.Error("get run decisions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary":   summary,
		"decisions": decisions,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{
		"trades": len(s.registry.Trades()),
	}
	if s.store != nil {
		classifications, err := s.store.CountClassifications(ctx)
		if err != nil {
			s.logger.Error("status: count classifications failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		runs, err := s.store.CountRuns(ctx)
		if err != nil {
			s.logger.Error("status: count runs failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["classifications_cached"] = classifications
		resp["runs"] = runs
	}

	configInfo := map[string]interface{}{
		"patterns_dir":        s.config.Patterns.Dir,
		"classifier_provider": s.config.Classifier.Provider,
		"fastpath_workers":    s.config.FastPath.Workers,
		"high_band_threshold": s.config.Scoring.HighBandThreshold,
		"database_path":       s.config.Storage.DatabasePath,
	}
	if diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Vocab.IndexPath); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
