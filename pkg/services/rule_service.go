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

// RuleService owns rule identity and the append-only version history.
// Versions only ever move forward: draft rows are appended with
// monotonically increasing version numbers and approval is a one-way
// transition with no reject or rollback at this level.
type RuleService interface {
	// CreateRule registers a new rule identity. Duplicate
	// (jurisdiction, topicKey) pairs are permitted.
	CreateRule(ctx context.Context, projectID uuid.UUID, jurisdiction, topicKey string) (*models.Rule, error)

	// UpsertRuleVersion appends a draft version with version number
	// max(existing)+1. Version allocation is serialized per rule.
	UpsertRuleVersion(ctx context.Context, ruleID uuid.UUID, content string, sourceRefs []models.SourceRef) (*models.RuleVersion, error)

	// ApproveRuleVersion marks a version approved, recording approver
	// and timestamp.
	ApproveRuleVersion(ctx context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error)

	// GetRule returns a rule by ID.
	GetRule(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error)

	// ListRules returns all rules for a project.
	ListRules(ctx context.Context, projectID uuid.UUID) ([]*models.Rule, error)

	// ListVersions returns a rule's version history, oldest first.
	ListVersions(ctx context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error)
}

type ruleService struct {
	db          TxRunner
	ruleRepo    repositories.RuleRepository
	versionRepo repositories.RuleVersionRepository
	logger      *zap.Logger
}

// RuleServiceDeps contains dependencies for RuleService.
type RuleServiceDeps struct {
	DB          TxRunner
	RuleRepo    repositories.RuleRepository
	VersionRepo repositories.RuleVersionRepository
	Logger      *zap.Logger
}

// NewRuleService creates a new RuleService.
func NewRuleService(deps *RuleServiceDeps) RuleService {
	return &ruleService{
		db:          deps.DB,
		ruleRepo:    deps.RuleRepo,
		versionRepo: deps.VersionRepo,
		logger:      deps.Logger,
	}
}

func (s *ruleService) CreateRule(ctx context.Context, projectID uuid.UUID, jurisdiction, topicKey string) (*models.Rule, error) {
	rule := &models.Rule{
		ProjectID:    projectID,
		Jurisdiction: jurisdiction,
		TopicKey:     topicKey,
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	s.logger.Info("rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("jurisdiction", jurisdiction),
		zap.String("topic_key", topicKey))

	return rule, nil
}

func (s *ruleService) UpsertRuleVersion(ctx context.Context, ruleID uuid.UUID, content string, sourceRefs []models.SourceRef) (*models.RuleVersion, error) {
	if len(sourceRefs) == 0 {
		return nil, apperrors.ErrSourceRefsRequired
	}

	var version *models.RuleVersion

	// Lock the rule row for the whole read-max-then-insert sequence so
	// two concurrent upserts cannot allocate the same version number.
	// The unique index on (rule_id, version) is the backstop.
	err := s.db.RunInTx(ctx, func(txCtx context.Context) error {
		rule, err := s.ruleRepo.GetByIDForUpdate(txCtx, ruleID)
		if err != nil {
			return err
		}
		if rule == nil {
			return apperrors.ErrRuleNotFound
		}

		next, err := s.versionRepo.NextVersion(txCtx, ruleID)
		if err != nil {
			return err
		}

		version = &models.RuleVersion{
			RuleID:       rule.ID,
			Jurisdiction: rule.Jurisdiction,
			TopicKey:     rule.TopicKey,
			Version:      next,
			Content:      content,
			Status:       models.RuleVersionStatusDraft,
			SourceRefs:   sourceRefs,
		}
		return s.versionRepo.Create(txCtx, version)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rule version created",
		zap.String("rule_id", ruleID.String()),
		zap.String("rule_version_id", version.ID.String()),
		zap.Int("version", version.Version))

	return version, nil
}

func (s *ruleService) ApproveRuleVersion(ctx context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error) {
	version, err := s.versionRepo.Approve(ctx, versionID, approver)
	if err != nil {
		return nil, fmt.Errorf("failed to approve rule version: %w", err)
	}
	if version == nil {
		return nil, apperrors.ErrNotFound
	}

	s.logger.Info("rule version approved",
		zap.String("rule_version_id", versionID.String()),
		zap.String("approved_by", approver))

	return version, nil
}

func (s *ruleService) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, apperrors.ErrRuleNotFound
	}
	return rule, nil
}

func (s *ruleService) ListRules(ctx context.Context, projectID uuid.UUID) ([]*models.Rule, error) {
	return s.ruleRepo.ListByProject(ctx, projectID)
}

func (s *ruleService) ListVersions(ctx context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, apperrors.ErrRuleNotFound
	}
	return s.versionRepo.ListByRule(ctx, ruleID)
}
