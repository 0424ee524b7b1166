package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and service connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.dbPinger != nil {
		if err := s.dbPinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisPinger != nil {
		if err := s.redisPinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Retrieval endpoints

// chatRequest is the payload for a chat request.
type chatRequest struct {
	Text                string         `json:"text"`
	TopK                int            `json:"top_k"`
	SimilarityThreshold float64        `json:"similarity_threshold"`
	Filter              *domain.Filter `json:"filter,omitempty"`
}

// handleChat godoc
// @Summary      Chat over ingested fragments
// @Description  Redacts PII, retrieves fragments via hybrid search, and generates a cited answer
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      chatRequest  true  "Chat query"
// @Success      200      {object}  domain.Response
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/v1/chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := domain.NewQuery(req.Text)
	if req.TopK > 0 {
		query.TopK = req.TopK
	}
	if req.SimilarityThreshold > 0 {
		query.SimilarityThreshold = req.SimilarityThreshold
	}
	query.Filter = req.Filter

	resp, err := s.orchestrator.Chat(r.Context(), query)
	if err != nil {
		writeRetrievalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleIngest godoc
// @Summary      Ingest a filesystem path
// @Description  Walks path, chunks every supported file, and commits fragments to the stores
// @Tags         Ingest
// @Produce      json
// @Param        path  query     string  true  "Filesystem path to ingest"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/v1/ingest [post]
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	count, err := s.ingestor.Ingest(r.Context(), path)
	if err != nil {
		writeRetrievalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"fragments_ingested": count})
}

// evaluationRequest is the payload for an evaluation run.
type evaluationRequest struct {
	Text string `json:"text"`
}

// handleEvaluationRun godoc
// @Summary      Run an LLM-judged evaluation
// @Description  Runs a query through the Orchestrator and scores the result with an LLM judge
// @Tags         Evaluation
// @Accept       json
// @Produce      json
// @Param        request  body      evaluationRequest  true  "Evaluation query"
// @Success      200      {object}  domain.EvaluationResult
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/evaluation/run [post]
func (s *Server) handleEvaluationRun(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), req.Text)
	if err != nil {
		writeRetrievalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeRetrievalError maps domain sentinel errors to HTTP status codes,
// following the switch-on-sentinel dispatch used across the core services.
func writeRetrievalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrIngestPathRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrIngestPathUnreadable):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
