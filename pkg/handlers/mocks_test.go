package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack-engine/pkg/models"
)

// Function-field mocks for the service interfaces handlers depend on.

type mockRuleService struct {
	createRuleFunc    func(ctx context.Context, projectID uuid.UUID, jurisdiction, topicKey string) (*models.Rule, error)
	upsertVersionFunc func(ctx context.Context, ruleID uuid.UUID, content string, sourceRefs []models.SourceRef) (*models.RuleVersion, error)
	approveFunc       func(ctx context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error)
	getRuleFunc       func(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error)
	listRulesFunc     func(ctx context.Context, projectID uuid.UUID) ([]*models.Rule, error)
	listVersionsFunc  func(ctx context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error)
}

func (m *mockRuleService) CreateRule(ctx context.Context, projectID uuid.UUID, jurisdiction, topicKey string) (*models.Rule, error) {
	return m.createRuleFunc(ctx, projectID, jurisdiction, topicKey)
}

func (m *mockRuleService) UpsertRuleVersion(ctx context.Context, ruleID uuid.UUID, content string, sourceRefs []models.SourceRef) (*models.RuleVersion, error) {
	return m.upsertVersionFunc(ctx, ruleID, content, sourceRefs)
}

func (m *mockRuleService) ApproveRuleVersion(ctx context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error) {
	return m.approveFunc(ctx, versionID, approver)
}

func (m *mockRuleService) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	return m.getRuleFunc(ctx, ruleID)
}

func (m *mockRuleService) ListRules(ctx context.Context, projectID uuid.UUID) ([]*models.Rule, error) {
	return m.listRulesFunc(ctx, projectID)
}

func (m *mockRuleService) ListVersions(ctx context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error) {
	return m.listVersionsFunc(ctx, ruleID)
}

type mockReviewService struct {
	createCandidateFunc func(ctx context.Context, projectID uuid.UUID, jurisdiction, diffSummary, riskLevel string, proposed []uuid.UUID) (*models.ChangeCandidate, error)
	createTaskFunc      func(ctx context.Context, changeCandidateID uuid.UUID) (*models.ReviewTask, error)
	submitDecisionFunc  func(ctx context.Context, reviewTaskID uuid.UUID, decision, decidedByRole, decidedBy string) (*models.ReviewTask, error)
	publishIfReadyFunc  func(ctx context.Context, jurisdiction string) error
	listOpenFunc        func(ctx context.Context) ([]*models.ReviewTask, error)
}

func (m *mockReviewService) CreateChangeCandidate(ctx context.Context, projectID uuid.UUID, jurisdiction, diffSummary, riskLevel string, proposed []uuid.UUID) (*models.ChangeCandidate, error) {
	return m.createCandidateFunc(ctx, projectID, jurisdiction, diffSummary, riskLevel, proposed)
}

func (m *mockReviewService) CreateReviewTask(ctx context.Context, changeCandidateID uuid.UUID) (*models.ReviewTask, error) {
	return m.createTaskFunc(ctx, changeCandidateID)
}

func (m *mockReviewService) SubmitDecision(ctx context.Context, reviewTaskID uuid.UUID, decision, decidedByRole, decidedBy string) (*models.ReviewTask, error) {
	return m.submitDecisionFunc(ctx, reviewTaskID, decision, decidedByRole, decidedBy)
}

func (m *mockReviewService) PublishIfReady(ctx context.Context, jurisdiction string) error {
	return m.publishIfReadyFunc(ctx, jurisdiction)
}

func (m *mockReviewService) ListOpenTasks(ctx context.Context) ([]*models.ReviewTask, error) {
	return m.listOpenFunc(ctx)
}

type mockAnswerService struct {
	searchFunc func(ctx context.Context, snapshotID uuid.UUID, jurisdiction, query string) ([]models.SearchItem, error)
	answerFunc func(ctx context.Context, projectID uuid.UUID, question string) (*models.AnswerResult, error)
}

func (m *mockAnswerService) SearchKB(ctx context.Context, snapshotID uuid.UUID, jurisdiction, query string) ([]models.SearchItem, error) {
	return m.searchFunc(ctx, snapshotID, jurisdiction, query)
}

func (m *mockAnswerService) Answer(ctx context.Context, projectID uuid.UUID, question string) (*models.AnswerResult, error) {
	return m.answerFunc(ctx, projectID, question)
}

type mockContextService struct {
	getFunc func(ctx context.Context, projectID uuid.UUID) (*models.UserContext, error)
	setFunc func(ctx context.Context, projectID uuid.UUID, locale, jurisdiction, allowedScope string) (*models.UserContext, error)
}

func (m *mockContextService) GetUserContext(ctx context.Context, projectID uuid.UUID) (*models.UserContext, error) {
	return m.getFunc(ctx, projectID)
}

func (m *mockContextService) SetUserContext(ctx context.Context, projectID uuid.UUID, locale, jurisdiction, allowedScope string) (*models.UserContext, error) {
	return m.setFunc(ctx, projectID, locale, jurisdiction, allowedScope)
}

type mockSnapshotService struct {
	publishFunc func(ctx context.Context, projectID uuid.UUID, jurisdiction string, asOfDate time.Time) (*models.Snapshot, error)
	getFunc     func(ctx context.Context, snapshotID uuid.UUID) (*models.Snapshot, error)
	listFunc    func(ctx context.Context, jurisdiction string) ([]*models.Snapshot, error)
}

func (m *mockSnapshotService) PublishSnapshot(ctx context.Context, projectID uuid.UUID, jurisdiction string, asOfDate time.Time) (*models.Snapshot, error) {
	return m.publishFunc(ctx, projectID, jurisdiction, asOfDate)
}

func (m *mockSnapshotService) GetSnapshot(ctx context.Context, snapshotID uuid.UUID) (*models.Snapshot, error) {
	return m.getFunc(ctx, snapshotID)
}

func (m *mockSnapshotService) ListSnapshots(ctx context.Context, jurisdiction string) ([]*models.Snapshot, error) {
	return m.listFunc(ctx, jurisdiction)
}
