package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/auth"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/services"
)

// CreateChangeCandidateRequest for POST /api/change-candidates
type CreateChangeCandidateRequest struct {
	ProjectID              uuid.UUID   `json:"project_id"`
	Jurisdiction           string      `json:"jurisdiction"`
	DiffSummary            string      `json:"diff_summary"`
	RiskLevel              string      `json:"risk_level"`
	ProposedRuleVersionIDs []uuid.UUID `json:"proposed_rule_version_ids"`
}

// SubmitDecisionRequest for POST /api/review-tasks/{tid}/decision
type SubmitDecisionRequest struct {
	Decision      string `json:"decision"`
	DecidedByRole string `json:"decided_by_role,omitempty"`
	DecidedBy     string `json:"decided_by,omitempty"`
}

// OpenTaskListResponse for GET /api/review-tasks/open
type OpenTaskListResponse struct {
	Tasks []*models.ReviewTask `json:"tasks"`
	Total int                  `json:"total"`
}

// ReviewHandler handles change-review pipeline HTTP requests.
type ReviewHandler struct {
	reviewService services.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService services.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers the review handler's routes on the given mux.
func (h *ReviewHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("POST /api/change-candidates",
		authMiddleware.RequireAuth(scopeMiddleware(h.CreateCandidate)))
	mux.HandleFunc("POST /api/change-candidates/{cid}/review-tasks",
		authMiddleware.RequireAuth(scopeMiddleware(h.CreateTask)))
	mux.HandleFunc("POST /api/review-tasks/{tid}/decision",
		authMiddleware.RequireAuth(scopeMiddleware(h.SubmitDecision)))
	mux.HandleFunc("GET /api/review-tasks/open",
		authMiddleware.RequireAuth(scopeMiddleware(h.ListOpen)))
	mux.HandleFunc("POST /api/jurisdictions/{jurisdiction}/publish-readiness",
		authMiddleware.RequireAuth(scopeMiddleware(h.PublishIfReady)))
}

// CreateCandidate handles POST /api/change-candidates
func (h *ReviewHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req CreateChangeCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.ProjectID == uuid.Nil || req.Jurisdiction == "" || req.RiskLevel == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "project_id, jurisdiction and risk_level are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	candidate, err := h.reviewService.CreateChangeCandidate(r.Context(), req.ProjectID, req.Jurisdiction, req.DiffSummary, req.RiskLevel, req.ProposedRuleVersionIDs)
	if err != nil {
		writeServiceError(w, h.logger, "create change candidate", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: candidate}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// CreateTask handles POST /api/change-candidates/{cid}/review-tasks
func (h *ReviewHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := ParseUUIDPath(w, r, "cid", h.logger)
	if !ok {
		return
	}

	task, err := h.reviewService.CreateReviewTask(r.Context(), candidateID)
	if err != nil {
		writeServiceError(w, h.logger, "create review task", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: task}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SubmitDecision handles POST /api/review-tasks/{tid}/decision
func (h *ReviewHandler) SubmitDecision(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseUUIDPath(w, r, "tid", h.logger)
	if !ok {
		return
	}

	var req SubmitDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Role and identity default from the authenticated caller; explicit
	// values in the body win so service accounts can act on behalf of a
	// named reviewer.
	decidedByRole := req.DecidedByRole
	decidedBy := req.DecidedBy
	if claims, ok := auth.GetClaims(r.Context()); ok {
		if decidedByRole == "" {
			decidedByRole = claims.Role
		}
		if decidedBy == "" {
			decidedBy = claims.Identity()
		}
	}

	task, err := h.reviewService.SubmitDecision(r.Context(), taskID, req.Decision, decidedByRole, decidedBy)
	if err != nil {
		writeServiceError(w, h.logger, "submit decision", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: task}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListOpen handles GET /api/review-tasks/open
func (h *ReviewHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.reviewService.ListOpenTasks(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list open review tasks", err)
		return
	}

	response := OpenTaskListResponse{Tasks: tasks, Total: len(tasks)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// PublishIfReady handles POST /api/jurisdictions/{jurisdiction}/publish-readiness
func (h *ReviewHandler) PublishIfReady(w http.ResponseWriter, r *http.Request) {
	jurisdiction := r.PathValue("jurisdiction")

	if err := h.reviewService.PublishIfReady(r.Context(), jurisdiction); err != nil {
		writeServiceError(w, h.logger, "check publish readiness", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]bool{"published": true}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
