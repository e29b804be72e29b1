package answerer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/models"
)

const maxCitations = 5

const systemMessage = `You are a compliance knowledge assistant. Answer strictly and only from the provided excerpts of reviewed regulatory content. If the excerpts do not contain the answer, say so plainly. Never speculate beyond the excerpts.`

// llmOrchestrator composes answers from snapshot excerpts with an LLM.
// It never fetches anything itself: retrieval happens exclusively
// through the search function it is handed, so every word of grounding
// comes from the caller's frozen snapshot.
type llmOrchestrator struct {
	client Client
	logger *zap.Logger
}

// NewOrchestrator creates an LLM-backed orchestrator.
func NewOrchestrator(client Client, logger *zap.Logger) Orchestrator {
	return &llmOrchestrator{
		client: client,
		logger: logger.Named("answerer"),
	}
}

func (o *llmOrchestrator) Answer(ctx context.Context, env Envelope, question string, search SearchFunc) (*models.AnswerResult, error) {
	if env.KBSnapshotID == "" {
		return refusal(env, "no active knowledge snapshot"), nil
	}

	snapshotID, err := uuid.Parse(env.KBSnapshotID)
	if err != nil {
		return refusal(env, "invalid snapshot reference"), nil
	}

	items, err := search(ctx, question)
	if err != nil {
		o.logger.Warn("snapshot search failed",
			zap.String("trace_id", env.TraceID),
			zap.Error(err))
		return refusal(env, "retrieval failed"), nil
	}
	if len(items) == 0 {
		return refusal(env, "no approved content matched the question"), nil
	}

	if len(items) > maxCitations {
		items = items[:maxCitations]
	}

	answer, err := o.client.Generate(ctx, systemMessage, buildPrompt(env, question, items))
	if err != nil {
		o.logger.Warn("generation failed",
			zap.String("trace_id", env.TraceID),
			zap.Error(err))
		return refusal(env, "answer generation unavailable"), nil
	}

	citations := make([]models.Citation, 0, len(items))
	for _, item := range items {
		citations = append(citations, models.Citation{
			KBSnapshotID:  snapshotID,
			RuleVersionID: item.RuleVersionID,
			Excerpt:       item.Excerpt,
		})
	}

	return &models.AnswerResult{
		TraceID:      env.TraceID,
		Refused:      false,
		Answer:       strings.TrimSpace(answer),
		Citations:    citations,
		KBSnapshotID: &snapshotID,
	}, nil
}

func buildPrompt(env Envelope, question string, items []models.SearchItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Jurisdiction: %s\nLocale: %s\nAnswer scope: %s\n\n", env.Jurisdiction, env.Locale, env.AllowedScope)
	b.WriteString("Excerpts from reviewed rules:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, item.Excerpt)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}

func refusal(env Envelope, reason string) *models.AnswerResult {
	return &models.AnswerResult{
		TraceID:       env.TraceID,
		Refused:       true,
		RefusalReason: reason,
		Citations:     []models.Citation{},
	}
}
