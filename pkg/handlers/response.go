package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/apperrors"
)

// ScopeMiddleware attaches a database scope to the request context; see
// database.WithScope.
type ScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// ApiResponse is the standard success envelope for API responses.
type ApiResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error to a response, logging only
// genuinely unexpected failures.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status, code := MapError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Failed to "+op, zap.Error(err))
	}
	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// MapError translates service errors to an HTTP status and the named
// error code callers key on. Unknown errors map to a generic 500.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperrors.ErrSourceRefsRequired):
		return http.StatusBadRequest, "SOURCE_REFS_REQUIRED"
	case errors.Is(err, apperrors.ErrRuleNotFound):
		return http.StatusNotFound, "RULE_NOT_FOUND"
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		return http.StatusNotFound, "SNAPSHOT_NOT_FOUND"
	case errors.Is(err, apperrors.ErrChangeCandidateNotFound):
		return http.StatusNotFound, "CHANGE_CANDIDATE_NOT_FOUND"
	case errors.Is(err, apperrors.ErrReviewTaskNotFound):
		return http.StatusNotFound, "REVIEW_TASK_NOT_FOUND"
	case errors.Is(err, apperrors.ErrJurisdictionMismatch):
		return http.StatusConflict, "JURISDICTION_MISMATCH"
	case errors.Is(err, apperrors.ErrForbiddenRole):
		return http.StatusForbidden, "FORBIDDEN_ROLE"
	case errors.Is(err, apperrors.ErrNoApprovedRules):
		return http.StatusConflict, "NO_APPROVED_RULES"
	case errors.Is(err, apperrors.ErrNotReady):
		return http.StatusConflict, "NOT_READY"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
