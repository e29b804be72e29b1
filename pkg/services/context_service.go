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

// ContextService resolves the per-project pointer to locale,
// jurisdiction, answer-scope policy, and active snapshot.
type ContextService interface {
	// GetUserContext returns the project's context, synthesizing (not
	// persisting) defaults when no row exists.
	GetUserContext(ctx context.Context, projectID uuid.UUID) (*models.UserContext, error)

	// SetUserContext upserts locale/jurisdiction/scope. The snapshot
	// pointer is owned by the snapshot publisher and is never touched
	// here.
	SetUserContext(ctx context.Context, projectID uuid.UUID, locale, jurisdiction, allowedScope string) (*models.UserContext, error)
}

type contextService struct {
	contextRepo repositories.UserContextRepository
	logger      *zap.Logger
}

// ContextServiceDeps contains dependencies for ContextService.
type ContextServiceDeps struct {
	ContextRepo repositories.UserContextRepository
	Logger      *zap.Logger
}

// NewContextService creates a new ContextService.
func NewContextService(deps *ContextServiceDeps) ContextService {
	return &contextService{
		contextRepo: deps.ContextRepo,
		logger:      deps.Logger,
	}
}

func (s *contextService) GetUserContext(ctx context.Context, projectID uuid.UUID) (*models.UserContext, error) {
	uc, err := s.contextRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if uc == nil {
		return models.DefaultUserContext(projectID), nil
	}
	return uc, nil
}

func (s *contextService) SetUserContext(ctx context.Context, projectID uuid.UUID, locale, jurisdiction, allowedScope string) (*models.UserContext, error) {
	if !models.ValidAnswerScope(allowedScope) {
		return nil, fmt.Errorf("%w: invalid allowed scope %q", apperrors.ErrValidation, allowedScope)
	}

	uc := &models.UserContext{
		ProjectID:    projectID,
		Locale:       locale,
		Jurisdiction: jurisdiction,
		AllowedScope: allowedScope,
	}
	if err := s.contextRepo.Upsert(ctx, uc); err != nil {
		return nil, err
	}

	s.logger.Info("user context updated",
		zap.String("project_id", projectID.String()),
		zap.String("jurisdiction", jurisdiction),
		zap.String("allowed_scope", allowedScope))

	return uc, nil
}
