package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack-engine/pkg/models"
)

// fakeTxRunner invokes fn directly; unit tests exercise the service
// logic without a database.
type fakeTxRunner struct {
	beginErr error
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx)
}

// mockRuleRepo implements repositories.RuleRepository for testing.
type mockRuleRepo struct {
	rules     map[uuid.UUID]*models.Rule
	createErr error
	getErr    error
}

func newMockRuleRepo() *mockRuleRepo {
	return &mockRuleRepo{rules: make(map[uuid.UUID]*models.Rule)}
}

func (m *mockRuleRepo) Create(_ context.Context, rule *models.Rule) error {
	if m.createErr != nil {
		return m.createErr
	}
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	m.rules[rule.ID] = rule
	return nil
}

func (m *mockRuleRepo) GetByID(_ context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.rules[ruleID], nil
}

func (m *mockRuleRepo) GetByIDForUpdate(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	return m.GetByID(ctx, ruleID)
}

func (m *mockRuleRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.Rule, error) {
	var result []*models.Rule
	for _, r := range m.rules {
		if r.ProjectID == projectID {
			result = append(result, r)
		}
	}
	return result, nil
}

// mockVersionRepo implements repositories.RuleVersionRepository for testing.
type mockVersionRepo struct {
	versions  map[uuid.UUID]*models.RuleVersion
	order     []uuid.UUID
	createErr error
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{versions: make(map[uuid.UUID]*models.RuleVersion)}
}

func (m *mockVersionRepo) add(v *models.RuleVersion) *models.RuleVersion {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.versions[v.ID] = v
	m.order = append(m.order, v.ID)
	return v
}

func (m *mockVersionRepo) NextVersion(_ context.Context, ruleID uuid.UUID) (int, error) {
	max := 0
	for _, v := range m.versions {
		if v.RuleID == ruleID && v.Version > max {
			max = v.Version
		}
	}
	return max + 1, nil
}

func (m *mockVersionRepo) Create(_ context.Context, version *models.RuleVersion) error {
	if m.createErr != nil {
		return m.createErr
	}
	version.ID = uuid.New()
	version.CreatedAt = time.Now()
	m.versions[version.ID] = version
	m.order = append(m.order, version.ID)
	return nil
}

func (m *mockVersionRepo) GetByID(_ context.Context, versionID uuid.UUID) (*models.RuleVersion, error) {
	return m.versions[versionID], nil
}

func (m *mockVersionRepo) ListByRule(_ context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error) {
	var result []*models.RuleVersion
	for _, id := range m.order {
		if v := m.versions[id]; v.RuleID == ruleID {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockVersionRepo) Approve(_ context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error) {
	v, ok := m.versions[versionID]
	if !ok {
		return nil, nil
	}
	now := time.Now()
	v.Status = models.RuleVersionStatusApproved
	v.ApprovedBy = &approver
	v.ApprovedAt = &now
	return v, nil
}

func (m *mockVersionRepo) ListApprovedIDsByJurisdiction(_ context.Context, jurisdiction string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, id := range m.order {
		v := m.versions[id]
		if v.Jurisdiction == jurisdiction && v.Status == models.RuleVersionStatusApproved {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockVersionRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.RuleVersion, error) {
	var result []*models.RuleVersion
	for _, id := range ids {
		if v, ok := m.versions[id]; ok {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockVersionRepo) CountUnapproved(_ context.Context, ids []uuid.UUID) (int, error) {
	count := 0
	for _, id := range ids {
		v, ok := m.versions[id]
		if !ok || v.Status != models.RuleVersionStatusApproved {
			count++
		}
	}
	return count, nil
}

// mockSnapshotRepo implements repositories.SnapshotRepository for testing.
type mockSnapshotRepo struct {
	snapshots map[uuid.UUID]*models.Snapshot
	order     []uuid.UUID
	createErr error
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{snapshots: make(map[uuid.UUID]*models.Snapshot)}
}

func (m *mockSnapshotRepo) Create(_ context.Context, snapshot *models.Snapshot) error {
	if m.createErr != nil {
		return m.createErr
	}
	snapshot.ID = uuid.New()
	snapshot.PublishedAt = time.Now()
	m.snapshots[snapshot.ID] = snapshot
	m.order = append(m.order, snapshot.ID)
	return nil
}

func (m *mockSnapshotRepo) GetByID(_ context.Context, snapshotID uuid.UUID) (*models.Snapshot, error) {
	return m.snapshots[snapshotID], nil
}

func (m *mockSnapshotRepo) ListByJurisdiction(_ context.Context, jurisdiction string) ([]*models.Snapshot, error) {
	var result []*models.Snapshot
	for i := len(m.order) - 1; i >= 0; i-- {
		if s := m.snapshots[m.order[i]]; s.Jurisdiction == jurisdiction {
			result = append(result, s)
		}
	}
	return result, nil
}

// mockContextRepo implements repositories.UserContextRepository for testing.
type mockContextRepo struct {
	contexts map[uuid.UUID]*models.UserContext
	getErr   error
}

func newMockContextRepo() *mockContextRepo {
	return &mockContextRepo{contexts: make(map[uuid.UUID]*models.UserContext)}
}

func (m *mockContextRepo) Get(_ context.Context, projectID uuid.UUID) (*models.UserContext, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.contexts[projectID], nil
}

func (m *mockContextRepo) Upsert(_ context.Context, uc *models.UserContext) error {
	if existing, ok := m.contexts[uc.ProjectID]; ok {
		uc.KBSnapshotID = existing.KBSnapshotID
	}
	uc.UpdatedAt = time.Now()
	m.contexts[uc.ProjectID] = uc
	return nil
}

func (m *mockContextRepo) SetSnapshot(_ context.Context, projectID, snapshotID uuid.UUID) error {
	uc, ok := m.contexts[projectID]
	if !ok {
		uc = models.DefaultUserContext(projectID)
		m.contexts[projectID] = uc
	}
	id := snapshotID
	uc.KBSnapshotID = &id
	uc.UpdatedAt = time.Now()
	return nil
}

// mockCandidateRepo implements repositories.ChangeCandidateRepository for testing.
type mockCandidateRepo struct {
	candidates map[uuid.UUID]*models.ChangeCandidate
}

func newMockCandidateRepo() *mockCandidateRepo {
	return &mockCandidateRepo{candidates: make(map[uuid.UUID]*models.ChangeCandidate)}
}

func (m *mockCandidateRepo) Create(_ context.Context, candidate *models.ChangeCandidate) error {
	candidate.ID = uuid.New()
	candidate.DetectedAt = time.Now()
	m.candidates[candidate.ID] = candidate
	return nil
}

func (m *mockCandidateRepo) GetByID(_ context.Context, candidateID uuid.UUID) (*models.ChangeCandidate, error) {
	return m.candidates[candidateID], nil
}

func (m *mockCandidateRepo) ListByJurisdiction(_ context.Context, jurisdiction string) ([]*models.ChangeCandidate, error) {
	var result []*models.ChangeCandidate
	for _, c := range m.candidates {
		if c.Jurisdiction == jurisdiction {
			result = append(result, c)
		}
	}
	return result, nil
}

// mockTaskRepo implements repositories.ReviewTaskRepository for testing.
type mockTaskRepo struct {
	tasks      map[uuid.UUID]*models.ReviewTask
	order      []uuid.UUID
	candidates *mockCandidateRepo
	decideErr  error
}

func newMockTaskRepo(candidates *mockCandidateRepo) *mockTaskRepo {
	return &mockTaskRepo{
		tasks:      make(map[uuid.UUID]*models.ReviewTask),
		candidates: candidates,
	}
}

func (m *mockTaskRepo) Create(_ context.Context, task *models.ReviewTask) error {
	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	m.tasks[task.ID] = task
	m.order = append(m.order, task.ID)
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, taskID uuid.UUID) (*models.ReviewTask, error) {
	return m.tasks[taskID], nil
}

func (m *mockTaskRepo) Decide(_ context.Context, taskID uuid.UUID, decision, decidedBy string) (bool, error) {
	if m.decideErr != nil {
		return false, m.decideErr
	}
	task, ok := m.tasks[taskID]
	if !ok || task.Status != models.ReviewTaskStatusOpen {
		return false, nil
	}
	now := time.Now()
	task.Status = models.ReviewTaskStatusDecided
	task.Decision = &decision
	task.DecidedBy = &decidedBy
	task.DecidedAt = &now
	return true, nil
}

func (m *mockTaskRepo) CountOpen(_ context.Context) (int, error) {
	count := 0
	for _, t := range m.tasks {
		if t.Status == models.ReviewTaskStatusOpen {
			count++
		}
	}
	return count, nil
}

func (m *mockTaskRepo) ListOpen(_ context.Context) ([]*models.ReviewTask, error) {
	var result []*models.ReviewTask
	for _, id := range m.order {
		if t := m.tasks[id]; t.Status == models.ReviewTaskStatusOpen {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTaskRepo) ListApprovedProposedVersionIDs(_ context.Context, jurisdiction string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, t := range m.tasks {
		if t.Status != models.ReviewTaskStatusDecided || t.Decision == nil || *t.Decision != models.ReviewDecisionApprove {
			continue
		}
		candidate := m.candidates.candidates[t.ChangeCandidateID]
		if candidate == nil || candidate.Jurisdiction != jurisdiction {
			continue
		}
		for _, id := range candidate.ProposedRuleVersionIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}
