package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juristack/juristack-engine/pkg/apperrors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.ErrValidation, http.StatusBadRequest, "validation_error"},
		{"source refs required", apperrors.ErrSourceRefsRequired, http.StatusBadRequest, "SOURCE_REFS_REQUIRED"},
		{"rule not found", apperrors.ErrRuleNotFound, http.StatusNotFound, "RULE_NOT_FOUND"},
		{"snapshot not found", apperrors.ErrSnapshotNotFound, http.StatusNotFound, "SNAPSHOT_NOT_FOUND"},
		{"candidate not found", apperrors.ErrChangeCandidateNotFound, http.StatusNotFound, "CHANGE_CANDIDATE_NOT_FOUND"},
		{"task not found", apperrors.ErrReviewTaskNotFound, http.StatusNotFound, "REVIEW_TASK_NOT_FOUND"},
		{"jurisdiction mismatch", apperrors.ErrJurisdictionMismatch, http.StatusConflict, "JURISDICTION_MISMATCH"},
		{"forbidden role", apperrors.ErrForbiddenRole, http.StatusForbidden, "FORBIDDEN_ROLE"},
		{"no approved rules", apperrors.ErrNoApprovedRules, http.StatusConflict, "NO_APPROVED_RULES"},
		{"not ready", apperrors.ErrNotReady, http.StatusConflict, "NOT_READY"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapError_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("check publish readiness: %w", apperrors.ErrNotReady)
	status, code := MapError(err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NOT_READY", code)
}
