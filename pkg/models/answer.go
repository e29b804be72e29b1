package models

import "github.com/google/uuid"

// Citation ties part of an answer back to a rule version inside the
// snapshot the answer was produced from. The snapshot id is recorded on
// every citation so a citation can never silently drift to a different
// bundle than the one the caller was served.
type Citation struct {
	KBSnapshotID  uuid.UUID `json:"kb_snapshot_id"`
	RuleVersionID uuid.UUID `json:"rule_version_id"`
	Excerpt       string    `json:"excerpt,omitempty"`
}

// SearchItem is one keyword-retrieval hit inside a snapshot.
type SearchItem struct {
	RuleVersionID uuid.UUID `json:"rule_version_id"`
	Excerpt       string    `json:"excerpt"`
}

// AnswerResult is the outcome of answering a question against a
// project's active snapshot. Refusal is a first-class outcome, not an
// error: a non-refused result always carries at least one citation.
type AnswerResult struct {
	TraceID       string     `json:"trace_id"`
	Refused       bool       `json:"refused"`
	RefusalReason string     `json:"refusal_reason,omitempty"`
	Answer        string     `json:"answer,omitempty"`
	Citations     []Citation `json:"citations"`
	KBSnapshotID  *uuid.UUID `json:"kb_snapshot_id,omitempty"`
}
