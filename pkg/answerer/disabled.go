package answerer

import (
	"context"

	"github.com/juristack/juristack-engine/pkg/models"
)

// disabledOrchestrator refuses every question. Used when no LLM
// endpoint is configured so the rest of the engine stays operational.
type disabledOrchestrator struct{}

// NewDisabledOrchestrator returns an orchestrator that always refuses.
func NewDisabledOrchestrator() Orchestrator {
	return disabledOrchestrator{}
}

func (disabledOrchestrator) Answer(ctx context.Context, env Envelope, question string, search SearchFunc) (*models.AnswerResult, error) {
	return refusal(env, "answer generation is not configured"), nil
}
