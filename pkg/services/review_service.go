package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/apperrors"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/repositories"
)

// ReviewService runs the human-in-the-loop change-review pipeline:
// candidate intake, risk-based role assignment, decision recording, and
// the publish-readiness gate. It never publishes snapshots itself; a
// caller checks PublishIfReady before invoking the snapshot publisher.
type ReviewService interface {
	// CreateChangeCandidate records a detected or proposed change. No
	// validation against store content happens here.
	CreateChangeCandidate(ctx context.Context, projectID uuid.UUID, jurisdiction, diffSummary, riskLevel string, proposedRuleVersionIDs []uuid.UUID) (*models.ChangeCandidate, error)

	// CreateReviewTask derives a review obligation from a candidate.
	// High risk routes to an expert, everything else to a curator; the
	// assignment is computed once and never re-derived.
	CreateReviewTask(ctx context.Context, changeCandidateID uuid.UUID) (*models.ReviewTask, error)

	// SubmitDecision records an approve/reject decision on an open
	// task. A curator may reject a high-risk change but never approve
	// one. The open->decided transition happens at most once.
	SubmitDecision(ctx context.Context, reviewTaskID uuid.UUID, decision, decidedByRole, decidedBy string) (*models.ReviewTask, error)

	// PublishIfReady gates snapshot publication: no open task may exist
	// anywhere, and every approve-decided candidate in the jurisdiction
	// must have all its proposed rule versions already approved in the
	// store. Returns ErrNotReady otherwise.
	PublishIfReady(ctx context.Context, jurisdiction string) error

	// ListOpenTasks returns all open review tasks, oldest first.
	ListOpenTasks(ctx context.Context) ([]*models.ReviewTask, error)
}

type reviewService struct {
	db            TxRunner
	candidateRepo repositories.ChangeCandidateRepository
	taskRepo      repositories.ReviewTaskRepository
	versionRepo   repositories.RuleVersionRepository
	logger        *zap.Logger
}

// ReviewServiceDeps contains dependencies for ReviewService.
type ReviewServiceDeps struct {
	DB            TxRunner
	CandidateRepo repositories.ChangeCandidateRepository
	TaskRepo      repositories.ReviewTaskRepository
	VersionRepo   repositories.RuleVersionRepository
	Logger        *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(deps *ReviewServiceDeps) ReviewService {
	return &reviewService{
		db:            deps.DB,
		candidateRepo: deps.CandidateRepo,
		taskRepo:      deps.TaskRepo,
		versionRepo:   deps.VersionRepo,
		logger:        deps.Logger,
	}
}

func (s *reviewService) CreateChangeCandidate(ctx context.Context, projectID uuid.UUID, jurisdiction, diffSummary, riskLevel string, proposedRuleVersionIDs []uuid.UUID) (*models.ChangeCandidate, error) {
	if !models.ValidRiskLevel(riskLevel) {
		return nil, fmt.Errorf("%w: invalid risk level %q", apperrors.ErrValidation, riskLevel)
	}

	candidate := &models.ChangeCandidate{
		ProjectID:              projectID,
		Jurisdiction:           jurisdiction,
		DiffSummary:            diffSummary,
		RiskLevel:              riskLevel,
		ProposedRuleVersionIDs: proposedRuleVersionIDs,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("change candidate created",
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("jurisdiction", jurisdiction),
		zap.String("risk_level", riskLevel))

	return candidate, nil
}

func (s *reviewService) CreateReviewTask(ctx context.Context, changeCandidateID uuid.UUID) (*models.ReviewTask, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, changeCandidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, apperrors.ErrChangeCandidateNotFound
	}

	task := &models.ReviewTask{
		ChangeCandidateID: candidate.ID,
		Status:            models.ReviewTaskStatusOpen,
		AssignedRole:      models.AssignedRoleForRisk(candidate.RiskLevel),
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("review task created",
		zap.String("task_id", task.ID.String()),
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("assigned_role", task.AssignedRole))

	return task, nil
}

func (s *reviewService) SubmitDecision(ctx context.Context, reviewTaskID uuid.UUID, decision, decidedByRole, decidedBy string) (*models.ReviewTask, error) {
	if decision != models.ReviewDecisionApprove && decision != models.ReviewDecisionReject {
		return nil, fmt.Errorf("%w: invalid decision %q", apperrors.ErrValidation, decision)
	}

	var task *models.ReviewTask

	err := s.db.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		task, err = s.taskRepo.GetByID(txCtx, reviewTaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return apperrors.ErrReviewTaskNotFound
		}

		candidate, err := s.candidateRepo.GetByID(txCtx, task.ChangeCandidateID)
		if err != nil {
			return err
		}
		if candidate == nil {
			return apperrors.ErrChangeCandidateNotFound
		}

		// The only segregation-of-duties rule in the pipeline: approving
		// a high-risk change requires the expert role. Rejection does not.
		if candidate.RiskLevel == models.RiskLevelHigh &&
			decision == models.ReviewDecisionApprove &&
			decidedByRole != models.ReviewRoleExpert {
			return apperrors.ErrForbiddenRole
		}

		decided, err := s.taskRepo.Decide(txCtx, reviewTaskID, decision, decidedBy)
		if err != nil {
			return err
		}
		if !decided {
			// Lost a race or the task was already decided; decisions are
			// never reopened or overwritten.
			return apperrors.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	task, err = s.taskRepo.GetByID(ctx, reviewTaskID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review decision recorded",
		zap.String("task_id", reviewTaskID.String()),
		zap.String("decision", decision),
		zap.String("decided_by_role", decidedByRole))

	return task, nil
}

func (s *reviewService) PublishIfReady(ctx context.Context, jurisdiction string) error {
	// Gate 1 is global on purpose: any open task anywhere means the
	// review subsystem is mid-flight and publication should wait.
	open, err := s.taskRepo.CountOpen(ctx)
	if err != nil {
		return err
	}
	if open > 0 {
		return fmt.Errorf("%w: %d review tasks still open", apperrors.ErrNotReady, open)
	}

	// Gate 2: an approved *change* does not itself promote the
	// underlying rule versions; approveRuleVersion is a separate step.
	// Refuse readiness if that step was skipped for any proposed id.
	ids, err := s.taskRepo.ListApprovedProposedVersionIDs(ctx, jurisdiction)
	if err != nil {
		return err
	}
	unapproved, err := s.versionRepo.CountUnapproved(ctx, ids)
	if err != nil {
		return err
	}
	if unapproved > 0 {
		return fmt.Errorf("%w: %d proposed rule versions not yet approved", apperrors.ErrNotReady, unapproved)
	}

	return nil
}

func (s *reviewService) ListOpenTasks(ctx context.Context) ([]*models.ReviewTask, error) {
	return s.taskRepo.ListOpen(ctx)
}
