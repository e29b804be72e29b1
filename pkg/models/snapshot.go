package models

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable, published bundle of approved rule versions
// for one jurisdiction. The included id list is frozen at creation time;
// later approvals never retroactively extend it. A jurisdiction
// accumulates many snapshots over time, each independently retrievable.
type Snapshot struct {
	ID                     uuid.UUID   `json:"id"`
	Jurisdiction           string      `json:"jurisdiction"`
	AsOfDate               time.Time   `json:"as_of_date"`
	IncludedRuleVersionIDs []uuid.UUID `json:"included_rule_version_ids"`
	PublishedAt            time.Time   `json:"published_at"`
}
