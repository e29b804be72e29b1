package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer scope constants controlling what kind of answers a project may
// receive.
const (
	ScopeEducationOnly      = "education_only"
	ScopeGenericInfo        = "generic_info"
	ScopeEscalationRequired = "escalation_required"
)

// ValidAnswerScope reports whether s is one of the known answer scopes.
func ValidAnswerScope(s string) bool {
	switch s {
	case ScopeEducationOnly, ScopeGenericInfo, ScopeEscalationRequired:
		return true
	}
	return false
}

// Defaults used when a project has no persisted context row.
const (
	DefaultLocale       = "en-GB"
	DefaultJurisdiction = "EU"
)

// UserContext is the per-project pointer to locale, jurisdiction,
// answer-scope policy, and the currently active knowledge-base
// snapshot. A nil KBSnapshotID means no snapshot is active and answers
// must refuse.
type UserContext struct {
	ProjectID    uuid.UUID  `json:"project_id"`
	Locale       string     `json:"locale"`
	Jurisdiction string     `json:"jurisdiction"`
	AllowedScope string     `json:"allowed_scope"`
	KBSnapshotID *uuid.UUID `json:"kb_snapshot_id,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DefaultUserContext synthesizes the context returned for a project
// that has never been configured. It is not persisted; a row appears
// only once SetUserContext is called.
func DefaultUserContext(projectID uuid.UUID) *UserContext {
	return &UserContext{
		ProjectID:    projectID,
		Locale:       DefaultLocale,
		Jurisdiction: DefaultJurisdiction,
		AllowedScope: ScopeEducationOnly,
	}
}
