package models

import (
	"time"

	"github.com/google/uuid"
)

// Rule version status constants. The lifecycle is deliberately minimal:
// a version is created as draft and transitions exactly once to approved.
// There is no reject or deprecate state at this level; rejection happens
// at the change-candidate level.
const (
	RuleVersionStatusDraft    = "draft"
	RuleVersionStatusApproved = "approved"
)

// SourceRef ties a rule version back to the source document it was
// derived from. Every version carries at least one.
type SourceRef struct {
	SourceDocumentID string `json:"source_document_id"`
	Excerpt          string `json:"excerpt,omitempty"`
}

// RuleVersion is an immutable content snapshot for one Rule. Version
// numbers start at 1 and are strictly increasing per rule with no gaps.
// Content and version never change after creation; only the status
// fields transition, one way, on approval.
type RuleVersion struct {
	ID           uuid.UUID   `json:"id"`
	RuleID       uuid.UUID   `json:"rule_id"`
	Jurisdiction string      `json:"jurisdiction"`
	TopicKey     string      `json:"topic_key"`
	Version      int         `json:"version"`
	Content      string      `json:"content"`
	Status       string      `json:"status"`
	SourceRefs   []SourceRef `json:"source_refs"`
	ApprovedBy   *string     `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time  `json:"approved_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsApproved reports whether the version has passed human review.
func (v *RuleVersion) IsApproved() bool {
	return v.Status == RuleVersionStatusApproved
}
