package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/juristack/juristack-engine/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// Actionable errors are returned as tool results so the calling model
// can see the code and message and adjust, instead of the error being
// swallowed by the MCP client.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors the caller can fix (invalid
// parameters, resource not found). System failures should still return
// Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// HandleServiceError converts a service error into either a structured
// tool result (for domain errors the caller can act on) or a Go error
// (for system failures).
func HandleServiceError(err error, fallbackCode string) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return NewErrorResult("VALIDATION_ERROR", err.Error()), nil
	case errors.Is(err, apperrors.ErrRuleNotFound):
		return NewErrorResult("RULE_NOT_FOUND", err.Error()), nil
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		return NewErrorResult("SNAPSHOT_NOT_FOUND", err.Error()), nil
	case errors.Is(err, apperrors.ErrChangeCandidateNotFound):
		return NewErrorResult("CHANGE_CANDIDATE_NOT_FOUND", err.Error()), nil
	case errors.Is(err, apperrors.ErrReviewTaskNotFound):
		return NewErrorResult("REVIEW_TASK_NOT_FOUND", err.Error()), nil
	case errors.Is(err, apperrors.ErrJurisdictionMismatch):
		return NewErrorResult("JURISDICTION_MISMATCH", err.Error()), nil
	case errors.Is(err, apperrors.ErrForbiddenRole):
		return NewErrorResult("FORBIDDEN_ROLE", err.Error()), nil
	case errors.Is(err, apperrors.ErrNoApprovedRules):
		return NewErrorResult("NO_APPROVED_RULES", err.Error()), nil
	case errors.Is(err, apperrors.ErrNotReady):
		return NewErrorResult("NOT_READY", err.Error()), nil
	case errors.Is(err, apperrors.ErrSourceRefsRequired):
		return NewErrorResult("SOURCE_REFS_REQUIRED", err.Error()), nil
	case errors.Is(err, apperrors.ErrConflict):
		return NewErrorResult("CONFLICT", err.Error()), nil
	case errors.Is(err, apperrors.ErrNotFound):
		return NewErrorResult("NOT_FOUND", err.Error()), nil
	default:
		return nil, fmt.Errorf("%s: %w", fallbackCode, err)
	}
}
