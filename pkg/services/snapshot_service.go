package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/apperrors"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/repositories"
)

// SnapshotService builds immutable, jurisdiction-scoped bundles of
// approved rule versions and repoints a project's active snapshot.
type SnapshotService interface {
	// PublishSnapshot freezes the current approved set for a
	// jurisdiction into a new snapshot and repoints the project's
	// active snapshot to it. Both writes commit atomically: the pointer
	// can never reference a snapshot that was not written.
	PublishSnapshot(ctx context.Context, projectID uuid.UUID, jurisdiction string, asOfDate time.Time) (*models.Snapshot, error)

	// GetSnapshot returns a snapshot by ID.
	GetSnapshot(ctx context.Context, snapshotID uuid.UUID) (*models.Snapshot, error)

	// ListSnapshots returns a jurisdiction's snapshot history, newest
	// first. Every published snapshot remains retrievable forever.
	ListSnapshots(ctx context.Context, jurisdiction string) ([]*models.Snapshot, error)
}

type snapshotService struct {
	db           TxRunner
	snapshotRepo repositories.SnapshotRepository
	versionRepo  repositories.RuleVersionRepository
	contextRepo  repositories.UserContextRepository
	logger       *zap.Logger
}

// SnapshotServiceDeps contains dependencies for SnapshotService.
type SnapshotServiceDeps struct {
	DB           TxRunner
	SnapshotRepo repositories.SnapshotRepository
	VersionRepo  repositories.RuleVersionRepository
	ContextRepo  repositories.UserContextRepository
	Logger       *zap.Logger
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(deps *SnapshotServiceDeps) SnapshotService {
	return &snapshotService{
		db:           deps.DB,
		snapshotRepo: deps.SnapshotRepo,
		versionRepo:  deps.VersionRepo,
		contextRepo:  deps.ContextRepo,
		logger:       deps.Logger,
	}
}

func (s *snapshotService) PublishSnapshot(ctx context.Context, projectID uuid.UUID, jurisdiction string, asOfDate time.Time) (*models.Snapshot, error) {
	var snapshot *models.Snapshot

	err := s.db.RunInTx(ctx, func(txCtx context.Context) error {
		ids, err := s.versionRepo.ListApprovedIDsByJurisdiction(txCtx, jurisdiction)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return apperrors.ErrNoApprovedRules
		}

		snapshot = &models.Snapshot{
			Jurisdiction:           jurisdiction,
			AsOfDate:               asOfDate,
			IncludedRuleVersionIDs: ids,
		}
		if err := s.snapshotRepo.Create(txCtx, snapshot); err != nil {
			return err
		}

		return s.contextRepo.SetSnapshot(txCtx, projectID, snapshot.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("snapshot published",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("jurisdiction", jurisdiction),
		zap.String("project_id", projectID.String()),
		zap.Int("included_versions", len(snapshot.IncludedRuleVersionIDs)))

	return snapshot, nil
}

func (s *snapshotService) GetSnapshot(ctx context.Context, snapshotID uuid.UUID) (*models.Snapshot, error) {
	snapshot, err := s.snapshotRepo.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, apperrors.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (s *snapshotService) ListSnapshots(ctx context.Context, jurisdiction string) ([]*models.Snapshot, error) {
	return s.snapshotRepo.ListByJurisdiction(ctx, jurisdiction)
}
