package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/auth"
	"github.com/juristack/juristack-engine/pkg/services"
)

// SetUserContextRequest for PUT /api/projects/{pid}/context
type SetUserContextRequest struct {
	Locale       string `json:"locale"`
	Jurisdiction string `json:"jurisdiction"`
	AllowedScope string `json:"allowed_scope"`
}

// ContextHandler handles user context HTTP requests.
type ContextHandler struct {
	contextService services.ContextService
	logger         *zap.Logger
}

// NewContextHandler creates a new context handler.
func NewContextHandler(contextService services.ContextService, logger *zap.Logger) *ContextHandler {
	return &ContextHandler{
		contextService: contextService,
		logger:         logger,
	}
}

// RegisterRoutes registers the context handler's routes on the given mux.
func (h *ContextHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("GET /api/projects/{pid}/context",
		authMiddleware.RequireAuth(scopeMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/projects/{pid}/context",
		authMiddleware.RequireAuth(scopeMiddleware(h.Set)))
}

// Get handles GET /api/projects/{pid}/context
func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseUUIDPath(w, r, "pid", h.logger)
	if !ok {
		return
	}

	uc, err := h.contextService.GetUserContext(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, h.logger, "get user context", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: uc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Set handles PUT /api/projects/{pid}/context
func (h *ContextHandler) Set(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseUUIDPath(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req SetUserContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Locale == "" || req.Jurisdiction == "" || req.AllowedScope == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "locale, jurisdiction and allowed_scope are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	uc, err := h.contextService.SetUserContext(r.Context(), projectID, req.Locale, req.Jurisdiction, req.AllowedScope)
	if err != nil {
		writeServiceError(w, h.logger, "set user context", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: uc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
