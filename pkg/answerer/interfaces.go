// Package answerer is the boundary to the external answer orchestrator.
// The engine hands it a question, an envelope describing the governed
// scope, and a snapshot-bound search function; it hands back an answer
// or a refusal. The orchestrator contract: it never returns a
// non-refused result with zero citations, every citation carries the
// envelope's snapshot id, and it retrieves through the supplied search
// function only. The gateway re-validates all of this and does not
// trust any implementation in this package.
package answerer

import (
	"context"

	"github.com/juristack/juristack-engine/pkg/models"
)

// Envelope describes the governed scope an answer must stay inside.
// KBSnapshotID is empty when the project has no active snapshot, in
// which case the orchestrator must refuse.
type Envelope struct {
	TraceID      string
	Locale       string
	KBSnapshotID string
	AllowedScope string
	Jurisdiction string
}

// SearchFunc performs snapshot-scoped keyword retrieval. The gateway
// binds it to one snapshot before handing it over; an orchestrator can
// never reach content outside that bundle.
type SearchFunc func(ctx context.Context, query string) ([]models.SearchItem, error)

// Orchestrator turns a question and retrieved excerpts into an answer
// or a refusal.
type Orchestrator interface {
	Answer(ctx context.Context, env Envelope, question string, search SearchFunc) (*models.AnswerResult, error)
}

// EmptySearch is the search function supplied when no snapshot is
// active: it returns no items for any query, guaranteeing a refusal
// regardless of orchestrator internals.
func EmptySearch(ctx context.Context, query string) ([]models.SearchItem, error) {
	return nil, nil
}

// Client is the minimal LLM surface the orchestrator composes answers
// with. Use this interface for dependency injection to enable mocking
// in tests.
type Client interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, systemMessage, prompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}
