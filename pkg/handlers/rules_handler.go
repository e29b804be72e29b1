package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/auth"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/services"
)

// CreateRuleRequest for POST /api/projects/{pid}/rules
type CreateRuleRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	TopicKey     string `json:"topic_key"`
}

// UpsertRuleVersionRequest for POST /api/rules/{rid}/versions
type UpsertRuleVersionRequest struct {
	Content    string             `json:"content"`
	SourceRefs []models.SourceRef `json:"source_refs"`
}

// ApproveRuleVersionRequest for POST /api/rule-versions/{vid}/approve
type ApproveRuleVersionRequest struct {
	Approver string `json:"approver,omitempty"`
}

// RuleListResponse for GET /api/projects/{pid}/rules
type RuleListResponse struct {
	Rules []*models.Rule `json:"rules"`
	Total int            `json:"total"`
}

// RuleVersionListResponse for GET /api/rules/{rid}/versions
type RuleVersionListResponse struct {
	Versions []*models.RuleVersion `json:"versions"`
	Total    int                   `json:"total"`
}

// RulesHandler handles rule and rule version HTTP requests.
type RulesHandler struct {
	ruleService services.RuleService
	logger      *zap.Logger
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(ruleService services.RuleService, logger *zap.Logger) *RulesHandler {
	return &RulesHandler{
		ruleService: ruleService,
		logger:      logger,
	}
}

// RegisterRoutes registers the rules handler's routes on the given mux.
func (h *RulesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("POST /api/projects/{pid}/rules",
		authMiddleware.RequireAuth(scopeMiddleware(h.CreateRule)))
	mux.HandleFunc("GET /api/projects/{pid}/rules",
		authMiddleware.RequireAuth(scopeMiddleware(h.ListRules)))
	mux.HandleFunc("POST /api/rules/{rid}/versions",
		authMiddleware.RequireAuth(scopeMiddleware(h.UpsertVersion)))
	mux.HandleFunc("GET /api/rules/{rid}/versions",
		authMiddleware.RequireAuth(scopeMiddleware(h.ListVersions)))
	mux.HandleFunc("POST /api/rule-versions/{vid}/approve",
		authMiddleware.RequireAuth(scopeMiddleware(h.ApproveVersion)))
}

// CreateRule handles POST /api/projects/{pid}/rules
func (h *RulesHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseUUIDPath(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Jurisdiction == "" || req.TopicKey == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "jurisdiction and topic_key are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rule, err := h.ruleService.CreateRule(r.Context(), projectID, req.Jurisdiction, req.TopicKey)
	if err != nil {
		writeServiceError(w, h.logger, "create rule", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: rule}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListRules handles GET /api/projects/{pid}/rules
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseUUIDPath(w, r, "pid", h.logger)
	if !ok {
		return
	}

	rules, err := h.ruleService.ListRules(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, h.logger, "list rules", err)
		return
	}

	response := RuleListResponse{Rules: rules, Total: len(rules)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpsertVersion handles POST /api/rules/{rid}/versions
func (h *RulesHandler) UpsertVersion(w http.ResponseWriter, r *http.Request) {
	ruleID, ok := ParseUUIDPath(w, r, "rid", h.logger)
	if !ok {
		return
	}

	var req UpsertRuleVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	version, err := h.ruleService.UpsertRuleVersion(r.Context(), ruleID, req.Content, req.SourceRefs)
	if err != nil {
		writeServiceError(w, h.logger, "upsert rule version", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: version}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListVersions handles GET /api/rules/{rid}/versions
func (h *RulesHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	ruleID, ok := ParseUUIDPath(w, r, "rid", h.logger)
	if !ok {
		return
	}

	versions, err := h.ruleService.ListVersions(r.Context(), ruleID)
	if err != nil {
		writeServiceError(w, h.logger, "list rule versions", err)
		return
	}

	response := RuleVersionListResponse{Versions: versions, Total: len(versions)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ApproveVersion handles POST /api/rule-versions/{vid}/approve
func (h *RulesHandler) ApproveVersion(w http.ResponseWriter, r *http.Request) {
	versionID, ok := ParseUUIDPath(w, r, "vid", h.logger)
	if !ok {
		return
	}

	var req ApproveRuleVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	approver := req.Approver
	if approver == "" {
		if claims, ok := auth.GetClaims(r.Context()); ok {
			approver = claims.Identity()
		}
	}

	version, err := h.ruleService.ApproveRuleVersion(r.Context(), versionID, approver)
	if err != nil {
		writeServiceError(w, h.logger, "approve rule version", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: version}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
