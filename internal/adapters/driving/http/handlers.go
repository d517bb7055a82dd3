package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
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

const (
	minQueryLength = 2
	maxQueryLength = 500
	maxSearchLimit = 10
)

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
// @Description  Returns the readiness status of the API (checks database and queue connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
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

// Knowledge endpoints

type searchRequest struct {
	Query string `json:"query" example:"a che ora inizia la sessione plenaria"`
	Limit int    `json:"limit" example:"3"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

// handleSearch godoc
// @Summary      Search the knowledge base
// @Description  Answers a query from structured facts when possible, otherwise by semantic retrieval over indexed chunks.
// @Tags         Knowledge
// @Accept       json
// @Produce      json
// @Param        request  body      searchRequest  true  "Search query"
// @Success      200      {object}  searchResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      502      {object}  ErrorResponse  "Embedding provider unavailable"
// @Failure      500      {object}  ErrorResponse  "Search failed"
// @Router       /knowledge/search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if n := utf8.RuneCountInString(query); n < minQueryLength || n > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query must be between 2 and 500 characters")
		return
	}
	if req.Limit < 0 || req.Limit > maxSearchLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 10")
		return
	}

	opts := domain.DefaultSearchOptions()
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}

	results, err := s.searchService.Search(r.Context(), query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingProvider) || errors.Is(err, domain.ErrEmbeddingModelNotConfigured) {
			writeError(w, http.StatusBadGateway, "embedding provider unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

type rebuildResponse struct {
	Status string `json:"status" example:"queued"`
	TaskID string `json:"task_id"`
}

// handleRebuild godoc
// @Summary      Queue an index rebuild
// @Description  Enqueues a full re-index of the knowledge base. Requires the configured rebuild token (X-Rebuild-Token header) or an admin Bearer token.
// @Tags         Knowledge
// @Produce      json
// @Param        X-Rebuild-Token  header    string  false  "Rebuild token"
// @Success      202  {object}  rebuildResponse
// @Failure      403  {object}  ErrorResponse  "Missing or invalid token"
// @Failure      500  {object}  ErrorResponse  "Could not enqueue rebuild"
// @Router       /knowledge/rebuild [post]
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeRebuild(r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	task := domain.NewRebuildIndexTask()
	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "could not enqueue rebuild")
		return
	}

	writeJSON(w, http.StatusAccepted, rebuildResponse{Status: "queued", TaskID: task.ID})
}

// authorizeRebuild accepts either the shared rebuild token or an admin JWT.
func (s *Server) authorizeRebuild(r *http.Request) bool {
	if s.auth == nil {
		return false
	}
	if token := r.Header.Get("X-Rebuild-Token"); token != "" {
		return s.auth.VerifyRebuildToken(token)
	}
	bearer := extractBearerToken(r)
	if bearer == "" {
		return false
	}
	claims, err := s.auth.ParseToken(bearer)
	if err != nil {
		return false
	}
	return claims.Role == domain.RoleAdmin
}

// Realtime endpoints

// handleRealtimeToken godoc
// @Summary      Issue a realtime session token
// @Description  Mints an ephemeral client secret with the realtime voice provider and records the session. An empty body issues a session with default settings.
// @Tags         Realtime
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  false  "Session overrides"
// @Success      201      {object}  domain.ClientSecret
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      502      {object}  ErrorResponse  "Realtime provider unavailable"
// @Router       /realtime/token [post]
func (s *Server) handleRealtimeToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	secret, err := s.realtimeService.IssueToken(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrRealtimeUnavailable) {
			writeError(w, http.StatusBadGateway, "realtime provider unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusCreated, secret)
}

// handleInvokeTool godoc
// @Summary      Receive a realtime tool webhook
// @Description  Accepts a tool-invocation event from the realtime voice provider and queues it for background processing.
// @Tags         Realtime
// @Accept       json
// @Produce      json
// @Param        request  body      domain.WebhookEvent  true  "Webhook event"
// @Success      202      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid or incomplete event"
// @Failure      500      {object}  ErrorResponse  "Could not enqueue event"
// @Router       /realtime/invoke-tool [post]
func (s *Server) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	var event domain.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if event.Event == "" {
		event.Event = "tool.invoked"
	}

	task, err := domain.NewWebhookEventTask(&event)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "could not enqueue event")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
