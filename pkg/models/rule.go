package models

import (
	"time"

	"github.com/google/uuid"
)

// Rule is the identity for a recurring compliance topic within a
// jurisdiction. Rules are created once and never mutated; their content
// lives in RuleVersions.
type Rule struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Jurisdiction string    `json:"jurisdiction"`
	TopicKey     string    `json:"topic_key"`
	CreatedAt    time.Time `json:"created_at"`
}
