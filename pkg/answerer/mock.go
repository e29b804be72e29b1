package answerer

import (
	"context"

	"github.com/juristack/juristack-engine/pkg/models"
)

// MockClient implements Client for tests.
type MockClient struct {
	GenerateFunc func(ctx context.Context, systemMessage, prompt string) (string, error)
	Model        string
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Generate(ctx context.Context, systemMessage, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemMessage, prompt)
	}
	return "mock answer", nil
}

func (m *MockClient) GetModel() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-model"
}

// MockOrchestrator implements Orchestrator for tests.
type MockOrchestrator struct {
	AnswerFunc func(ctx context.Context, env Envelope, question string, search SearchFunc) (*models.AnswerResult, error)
}

var _ Orchestrator = (*MockOrchestrator)(nil)

func (m *MockOrchestrator) Answer(ctx context.Context, env Envelope, question string, search SearchFunc) (*models.AnswerResult, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, env, question, search)
	}
	return &models.AnswerResult{TraceID: env.TraceID, Refused: true, RefusalReason: "mock", Citations: []models.Citation{}}, nil
}
