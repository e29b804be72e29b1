package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/auth"
	"github.com/juristack/juristack-engine/pkg/logging"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/services"
)

// AnswerRequest for POST /api/projects/{pid}/answer
type AnswerRequest struct {
	Question string `json:"question"`
}

// SearchRequest for POST /api/snapshots/{sid}/search
type SearchRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Query        string `json:"query"`
}

// SearchResponse wraps snapshot-scoped search results.
type SearchResponse struct {
	Items []models.SearchItem `json:"items"`
	Total int                 `json:"total"`
}

// AnswerHandler handles retrieval and answer HTTP requests.
type AnswerHandler struct {
	answerService services.AnswerService
	logger        *zap.Logger
}

// NewAnswerHandler creates a new answer handler.
func NewAnswerHandler(answerService services.AnswerService, logger *zap.Logger) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
		logger:        logger,
	}
}

// RegisterRoutes registers the answer handler's routes on the given mux.
func (h *AnswerHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("POST /api/projects/{pid}/answer",
		authMiddleware.RequireAuth(scopeMiddleware(h.Answer)))
	mux.HandleFunc("POST /api/snapshots/{sid}/search",
		authMiddleware.RequireAuth(scopeMiddleware(h.Search)))
}

// Answer handles POST /api/projects/{pid}/answer
func (h *AnswerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseUUIDPath(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "question is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.logger.Info("Answering question",
		zap.String("project_id", projectID.String()),
		zap.String("question", logging.TruncateQuestion(req.Question)))

	result, err := h.answerService.Answer(r.Context(), projectID, req.Question)
	if err != nil {
		writeServiceError(w, h.logger, "answer question", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Search handles POST /api/snapshots/{sid}/search
func (h *AnswerHandler) Search(w http.ResponseWriter, r *http.Request) {
	snapshotID, ok := ParseUUIDPath(w, r, "sid", h.logger)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Jurisdiction == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "jurisdiction is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	items, err := h.answerService.SearchKB(r.Context(), snapshotID, req.Jurisdiction, req.Query)
	if err != nil {
		writeServiceError(w, h.logger, "search snapshot", err)
		return
	}

	response := SearchResponse{Items: items, Total: len(items)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
