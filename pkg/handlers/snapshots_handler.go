package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/auth"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/services"
)

// PublishSnapshotRequest for POST /api/projects/{pid}/snapshots
type PublishSnapshotRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	AsOfDate     string `json:"as_of_date"` // YYYY-MM-DD
}

// SnapshotListResponse for GET /api/jurisdictions/{jurisdiction}/snapshots
type SnapshotListResponse struct {
	Snapshots []*models.Snapshot `json:"snapshots"`
	Total     int                `json:"total"`
}

// SnapshotsHandler handles snapshot HTTP requests.
type SnapshotsHandler struct {
	snapshotService services.SnapshotService
	logger          *zap.Logger
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(snapshotService services.SnapshotService, logger *zap.Logger) *SnapshotsHandler {
	return &SnapshotsHandler{
		snapshotService: snapshotService,
		logger:          logger,
	}
}

// RegisterRoutes registers the snapshots handler's routes on the given mux.
func (h *SnapshotsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("POST /api/projects/{pid}/snapshots",
		authMiddleware.RequireAuth(scopeMiddleware(h.Publish)))
	mux.HandleFunc("GET /api/snapshots/{sid}",
		authMiddleware.RequireAuth(scopeMiddleware(h.Get)))
	mux.HandleFunc("GET /api/jurisdictions/{jurisdiction}/snapshots",
		authMiddleware.RequireAuth(scopeMiddleware(h.List)))
}

// Publish handles POST /api/projects/{pid}/snapshots
func (h *SnapshotsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseUUIDPath(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req PublishSnapshotRequest
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

	asOfDate := time.Now()
	if req.AsOfDate != "" {
		parsed, err := time.Parse("2006-01-02", req.AsOfDate)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", "as_of_date must be YYYY-MM-DD"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		asOfDate = parsed
	}

	snapshot, err := h.snapshotService.PublishSnapshot(r.Context(), projectID, req.Jurisdiction, asOfDate)
	if err != nil {
		writeServiceError(w, h.logger, "publish snapshot", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: snapshot}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/snapshots/{sid}
func (h *SnapshotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshotID, ok := ParseUUIDPath(w, r, "sid", h.logger)
	if !ok {
		return
	}

	snapshot, err := h.snapshotService.GetSnapshot(r.Context(), snapshotID)
	if err != nil {
		writeServiceError(w, h.logger, "get snapshot", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: snapshot}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/jurisdictions/{jurisdiction}/snapshots
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	jurisdiction := r.PathValue("jurisdiction")

	snapshots, err := h.snapshotService.ListSnapshots(r.Context(), jurisdiction)
	if err != nil {
		writeServiceError(w, h.logger, "list snapshots", err)
		return
	}

	response := SnapshotListResponse{Snapshots: snapshots, Total: len(snapshots)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
