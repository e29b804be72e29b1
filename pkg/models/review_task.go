package models

import (
	"time"

	"github.com/google/uuid"
)

// Review task status constants.
const (
	ReviewTaskStatusOpen    = "open"
	ReviewTaskStatusDecided = "decided"
)

// Reviewer role constants. Expert review is required to approve
// high-risk changes; a curator may still reject them.
const (
	ReviewRoleCurator = "curator"
	ReviewRoleExpert  = "expert"
)

// Review decision constants.
const (
	ReviewDecisionApprove = "approve"
	ReviewDecisionReject  = "reject"
)

// AssignedRoleForRisk derives the reviewer role a change candidate's
// risk level requires. Computed once at task creation and never
// re-derived.
func AssignedRoleForRisk(riskLevel string) string {
	if riskLevel == RiskLevelHigh {
		return ReviewRoleExpert
	}
	return ReviewRoleCurator
}

// ReviewTask is a review obligation derived from exactly one change
// candidate. Created open, it transitions to decided exactly once and
// is never reopened.
type ReviewTask struct {
	ID                uuid.UUID  `json:"id"`
	ChangeCandidateID uuid.UUID  `json:"change_candidate_id"`
	Status            string     `json:"status"`
	AssignedRole      string     `json:"assigned_role"`
	Decision          *string    `json:"decision,omitempty"`
	DecidedBy         *string    `json:"decided_by,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
