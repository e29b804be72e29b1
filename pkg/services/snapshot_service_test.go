package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/apperrors"
	"github.com/juristack/juristack-engine/pkg/models"
)

type snapshotFixture struct {
	svc       SnapshotService
	snapshots *mockSnapshotRepo
	versions  *mockVersionRepo
	contexts  *mockContextRepo
}

func newSnapshotFixture() *snapshotFixture {
	snapshots := newMockSnapshotRepo()
	versions := newMockVersionRepo()
	contexts := newMockContextRepo()
	svc := NewSnapshotService(&SnapshotServiceDeps{
		DB:           &fakeTxRunner{},
		SnapshotRepo: snapshots,
		VersionRepo:  versions,
		ContextRepo:  contexts,
		Logger:       zap.NewNop(),
	})
	return &snapshotFixture{svc: svc, snapshots: snapshots, versions: versions, contexts: contexts}
}

func (f *snapshotFixture) approvedVersion(jurisdiction string) *models.RuleVersion {
	return f.versions.add(&models.RuleVersion{
		RuleID:       uuid.New(),
		Jurisdiction: jurisdiction,
		Version:      1,
		Status:       models.RuleVersionStatusApproved,
	})
}

func TestSnapshotService_PublishSnapshot(t *testing.T) {
	f := newSnapshotFixture()
	projectID := uuid.New()
	v1 := f.approvedVersion("EU")
	v2 := f.approvedVersion("EU")
	f.versions.add(&models.RuleVersion{
		RuleID:       uuid.New(),
		Jurisdiction: "EU",
		Version:      1,
		Status:       models.RuleVersionStatusDraft,
	})
	f.approvedVersion("UK")

	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	snapshot, err := f.svc.PublishSnapshot(context.Background(), projectID, "EU", asOf)
	require.NoError(t, err)

	// Only approved EU versions are frozen in.
	assert.ElementsMatch(t, []uuid.UUID{v1.ID, v2.ID}, snapshot.IncludedRuleVersionIDs)
	assert.Equal(t, "EU", snapshot.Jurisdiction)
	assert.Equal(t, asOf, snapshot.AsOfDate)

	// The project's pointer was repointed in the same operation.
	uc, err := f.contexts.Get(context.Background(), projectID)
	require.NoError(t, err)
	require.NotNil(t, uc)
	require.NotNil(t, uc.KBSnapshotID)
	assert.Equal(t, snapshot.ID, *uc.KBSnapshotID)
}

func TestSnapshotService_PublishSnapshot_NoApprovedRules(t *testing.T) {
	f := newSnapshotFixture()
	f.versions.add(&models.RuleVersion{
		RuleID:       uuid.New(),
		Jurisdiction: "EU",
		Version:      1,
		Status:       models.RuleVersionStatusDraft,
	})

	_, err := f.svc.PublishSnapshot(context.Background(), uuid.New(), "EU", time.Now())
	require.ErrorIs(t, err, apperrors.ErrNoApprovedRules)
	assert.Empty(t, f.snapshots.snapshots)
}

func TestSnapshotService_PublishSnapshot_LaterApprovalsDoNotLeakIn(t *testing.T) {
	f := newSnapshotFixture()
	projectID := uuid.New()
	v1 := f.approvedVersion("EU")

	snapshot, err := f.svc.PublishSnapshot(context.Background(), projectID, "EU", time.Now())
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{v1.ID}, snapshot.IncludedRuleVersionIDs)

	// Approving more content afterwards must not change the published set.
	f.approvedVersion("EU")
	stored, err := f.svc.GetSnapshot(context.Background(), snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{v1.ID}, stored.IncludedRuleVersionIDs)
}

func TestSnapshotService_PublishSnapshot_HistoryAccumulates(t *testing.T) {
	f := newSnapshotFixture()
	projectID := uuid.New()
	f.approvedVersion("EU")

	first, err := f.svc.PublishSnapshot(context.Background(), projectID, "EU", time.Now())
	require.NoError(t, err)
	second, err := f.svc.PublishSnapshot(context.Background(), projectID, "EU", time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history, err := f.svc.ListSnapshots(context.Background(), "EU")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first; the older snapshot stays retrievable.
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	uc, err := f.contexts.Get(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *uc.KBSnapshotID)
}

func TestSnapshotService_GetSnapshot_NotFound(t *testing.T) {
	f := newSnapshotFixture()

	_, err := f.svc.GetSnapshot(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
}
