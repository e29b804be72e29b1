package models

import (
	"time"

	"github.com/google/uuid"
)

// Risk level constants for change candidates.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// ValidRiskLevel reports whether s is one of the known risk levels.
func ValidRiskLevel(s string) bool {
	switch s {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// ChangeCandidate is a detected or proposed set of edits awaiting human
// review. It is a stateless container: its disposition is expressed
// entirely through its review tasks.
type ChangeCandidate struct {
	ID                     uuid.UUID   `json:"id"`
	ProjectID              uuid.UUID   `json:"project_id"`
	Jurisdiction           string      `json:"jurisdiction"`
	DetectedAt             time.Time   `json:"detected_at"`
	DiffSummary            string      `json:"diff_summary"`
	RiskLevel              string      `json:"risk_level"`
	ProposedRuleVersionIDs []uuid.UUID `json:"proposed_rule_version_ids"`
}
