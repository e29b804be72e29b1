package apperrors

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrValidation              = errors.New("validation failed")
	ErrSourceRefsRequired      = errors.New("at least one source ref is required")
	ErrRuleNotFound            = errors.New("rule not found")
	ErrSnapshotNotFound        = errors.New("snapshot not found")
	ErrJurisdictionMismatch    = errors.New("snapshot jurisdiction does not match request")
	ErrNoApprovedRules         = errors.New("no approved rule versions in jurisdiction")
	ErrChangeCandidateNotFound = errors.New("change candidate not found")
	ErrReviewTaskNotFound      = errors.New("review task not found")
	ErrForbiddenRole           = errors.New("role is not permitted to approve this change")
	ErrNotReady                = errors.New("review pipeline is not ready to publish")
)
