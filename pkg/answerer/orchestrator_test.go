package answerer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/models"
)

func testEnvelope(snapshotID string) Envelope {
	return Envelope{
		TraceID:      uuid.NewString(),
		Locale:       "en-GB",
		KBSnapshotID: snapshotID,
		AllowedScope: "education_only",
		Jurisdiction: "EU",
	}
}

func staticSearch(items []models.SearchItem, err error) SearchFunc {
	return func(ctx context.Context, query string) ([]models.SearchItem, error) {
		return items, err
	}
}

func TestOrchestrator_RefusesWithoutSnapshot(t *testing.T) {
	orch := NewOrchestrator(&MockClient{}, zap.NewNop())

	result, err := orch.Answer(context.Background(), testEnvelope(""), "question", EmptySearch)
	require.NoError(t, err)
	assert.True(t, result.Refused)
	assert.Equal(t, "no active knowledge snapshot", result.RefusalReason)
	assert.Empty(t, result.Citations)
}

func TestOrchestrator_RefusesOnInvalidSnapshotID(t *testing.T) {
	orch := NewOrchestrator(&MockClient{}, zap.NewNop())

	result, err := orch.Answer(context.Background(), testEnvelope("not-a-uuid"), "question", EmptySearch)
	require.NoError(t, err)
	assert.True(t, result.Refused)
	assert.Equal(t, "invalid snapshot reference", result.RefusalReason)
}

func TestOrchestrator_RefusesOnEmptySearchResults(t *testing.T) {
	orch := NewOrchestrator(&MockClient{}, zap.NewNop())
	env := testEnvelope(uuid.NewString())

	result, err := orch.Answer(context.Background(), env, "question", staticSearch(nil, nil))
	require.NoError(t, err)
	assert.True(t, result.Refused)
	assert.Equal(t, "no approved content matched the question", result.RefusalReason)
}

func TestOrchestrator_RefusesOnSearchError(t *testing.T) {
	orch := NewOrchestrator(&MockClient{}, zap.NewNop())
	env := testEnvelope(uuid.NewString())

	result, err := orch.Answer(context.Background(), env, "question", staticSearch(nil, errors.New("boom")))
	require.NoError(t, err)
	assert.True(t, result.Refused)
	assert.Equal(t, "retrieval failed", result.RefusalReason)
}

func TestOrchestrator_RefusesOnGenerationFailure(t *testing.T) {
	client := &MockClient{
		GenerateFunc: func(ctx context.Context, systemMessage, prompt string) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	orch := NewOrchestrator(client, zap.NewNop())
	env := testEnvelope(uuid.NewString())
	items := []models.SearchItem{{RuleVersionID: uuid.New(), Excerpt: "excerpt"}}

	result, err := orch.Answer(context.Background(), env, "question", staticSearch(items, nil))
	require.NoError(t, err)
	assert.True(t, result.Refused)
	assert.Equal(t, "answer generation unavailable", result.RefusalReason)
}

func TestOrchestrator_CitesEverySearchItem(t *testing.T) {
	snapshotID := uuid.New()
	var seenPrompt string
	client := &MockClient{
		GenerateFunc: func(ctx context.Context, systemMessage, prompt string) (string, error) {
			seenPrompt = prompt
			return "  grounded answer  ", nil
		},
	}
	orch := NewOrchestrator(client, zap.NewNop())
	env := testEnvelope(snapshotID.String())
	items := []models.SearchItem{
		{RuleVersionID: uuid.New(), Excerpt: "first excerpt"},
		{RuleVersionID: uuid.New(), Excerpt: "second excerpt"},
	}

	result, err := orch.Answer(context.Background(), env, "question", staticSearch(items, nil))
	require.NoError(t, err)
	assert.False(t, result.Refused)
	assert.Equal(t, "grounded answer", result.Answer)
	require.Len(t, result.Citations, 2)
	for i, citation := range result.Citations {
		assert.Equal(t, snapshotID, citation.KBSnapshotID)
		assert.Equal(t, items[i].RuleVersionID, citation.RuleVersionID)
		assert.Equal(t, items[i].Excerpt, citation.Excerpt)
	}
	require.NotNil(t, result.KBSnapshotID)
	assert.Equal(t, snapshotID, *result.KBSnapshotID)

	// The prompt carries the governed scope and the excerpts.
	assert.Contains(t, seenPrompt, "Jurisdiction: EU")
	assert.Contains(t, seenPrompt, "first excerpt")
	assert.Contains(t, seenPrompt, "second excerpt")
	assert.Contains(t, seenPrompt, "Question: question")
}

func TestOrchestrator_CapsCitations(t *testing.T) {
	client := &MockClient{}
	orch := NewOrchestrator(client, zap.NewNop())
	env := testEnvelope(uuid.NewString())

	var items []models.SearchItem
	for i := 0; i < maxCitations+3; i++ {
		items = append(items, models.SearchItem{RuleVersionID: uuid.New(), Excerpt: "excerpt"})
	}

	result, err := orch.Answer(context.Background(), env, "question", staticSearch(items, nil))
	require.NoError(t, err)
	assert.False(t, result.Refused)
	assert.Len(t, result.Citations, maxCitations)
}

func TestEmptySearch(t *testing.T) {
	items, err := EmptySearch(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildPrompt_NumbersExcerpts(t *testing.T) {
	env := testEnvelope(uuid.NewString())
	prompt := buildPrompt(env, "q", []models.SearchItem{
		{Excerpt: "alpha"},
		{Excerpt: "beta"},
	})
	assert.True(t, strings.Contains(prompt, "[1] alpha"))
	assert.True(t, strings.Contains(prompt, "[2] beta"))
}
