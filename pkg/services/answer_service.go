package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/answerer"
	"github.com/juristack/juristack-engine/pkg/apperrors"
	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/repositories"
)

// Excerpt length returned by snapshot search.
const excerptLength = 140

// AnswerService is the retrieval and answer gateway. Reads are
// snapshot-scoped and side-effect free; answering is fail-closed: with
// no active snapshot the orchestrator is invoked with an empty snapshot
// id and a search function that returns nothing, and whatever comes
// back is additionally checked against the orchestrator contract before
// it reaches the caller.
type AnswerService interface {
	// SearchKB performs keyword retrieval restricted to the snapshot's
	// frozen id set. Every whitespace token of the query must appear in
	// a version's content (case-insensitive) for it to match; an empty
	// query matches everything. Results follow the snapshot's
	// insertion order.
	SearchKB(ctx context.Context, snapshotID uuid.UUID, jurisdiction, query string) ([]models.SearchItem, error)

	// Answer resolves the project's context and delegates to the
	// orchestrator. It never fails for business reasons; refusal is a
	// normal return value.
	Answer(ctx context.Context, projectID uuid.UUID, question string) (*models.AnswerResult, error)
}

type answerService struct {
	snapshotRepo repositories.SnapshotRepository
	versionRepo  repositories.RuleVersionRepository
	contextSvc   ContextService
	orchestrator answerer.Orchestrator
	logger       *zap.Logger
}

// AnswerServiceDeps contains dependencies for AnswerService.
type AnswerServiceDeps struct {
	SnapshotRepo repositories.SnapshotRepository
	VersionRepo  repositories.RuleVersionRepository
	ContextSvc   ContextService
	Orchestrator answerer.Orchestrator
	Logger       *zap.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(deps *AnswerServiceDeps) AnswerService {
	return &answerService{
		snapshotRepo: deps.SnapshotRepo,
		versionRepo:  deps.VersionRepo,
		contextSvc:   deps.ContextSvc,
		orchestrator: deps.Orchestrator,
		logger:       deps.Logger,
	}
}

func (s *answerService) SearchKB(ctx context.Context, snapshotID uuid.UUID, jurisdiction, query string) ([]models.SearchItem, error) {
	snapshot, err := s.snapshotRepo.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, apperrors.ErrSnapshotNotFound
	}
	if snapshot.Jurisdiction != jurisdiction {
		return nil, apperrors.ErrJurisdictionMismatch
	}

	versions, err := s.versionRepo.GetByIDs(ctx, snapshot.IncludedRuleVersionIDs)
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.ToLower(query))

	items := []models.SearchItem{}
	for _, v := range versions {
		if matchesAllTokens(v.Content, tokens) {
			items = append(items, models.SearchItem{
				RuleVersionID: v.ID,
				Excerpt:       excerpt(v.Content),
			})
		}
	}

	return items, nil
}

func (s *answerService) Answer(ctx context.Context, projectID uuid.UUID, question string) (*models.AnswerResult, error) {
	uc, err := s.contextSvc.GetUserContext(ctx, projectID)
	if err != nil {
		return nil, err
	}

	env := answerer.Envelope{
		TraceID:      uuid.NewString(),
		Locale:       uc.Locale,
		AllowedScope: uc.AllowedScope,
		Jurisdiction: uc.Jurisdiction,
	}

	// Fail closed: without an active snapshot the orchestrator gets an
	// empty snapshot id and a search that never returns items. We do not
	// rely on the orchestrator's own empty-snapshot handling.
	search := answerer.SearchFunc(answerer.EmptySearch)
	if uc.KBSnapshotID != nil {
		snapshotID := *uc.KBSnapshotID
		env.KBSnapshotID = snapshotID.String()
		search = func(sctx context.Context, q string) ([]models.SearchItem, error) {
			return s.SearchKB(sctx, snapshotID, uc.Jurisdiction, q)
		}
	}

	result, err := s.orchestrator.Answer(ctx, env, question, search)
	if err != nil {
		s.logger.Error("orchestrator failed; refusing",
			zap.String("trace_id", env.TraceID),
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		return s.refuse(env, "answering unavailable"), nil
	}

	return s.enforceContract(env, uc.KBSnapshotID, result), nil
}

// enforceContract coerces any orchestrator contract violation to a
// refusal: a non-refused result must cite at least once, and every
// citation must carry the snapshot id the envelope named.
func (s *answerService) enforceContract(env answerer.Envelope, active *uuid.UUID, result *models.AnswerResult) *models.AnswerResult {
	if result.Refused {
		if result.Citations == nil {
			result.Citations = []models.Citation{}
		}
		return result
	}

	if active == nil || len(result.Citations) == 0 {
		s.logger.Warn("orchestrator contract violation: non-refused result without citations",
			zap.String("trace_id", env.TraceID))
		return s.refuse(env, "answer could not be grounded in reviewed content")
	}

	for _, c := range result.Citations {
		if c.KBSnapshotID != *active {
			s.logger.Warn("orchestrator contract violation: citation outside active snapshot",
				zap.String("trace_id", env.TraceID),
				zap.String("cited_snapshot", c.KBSnapshotID.String()),
				zap.String("active_snapshot", active.String()))
			return s.refuse(env, "answer cited content outside the active snapshot")
		}
	}

	result.TraceID = env.TraceID
	result.KBSnapshotID = active
	return result
}

func (s *answerService) refuse(env answerer.Envelope, reason string) *models.AnswerResult {
	return &models.AnswerResult{
		TraceID:       env.TraceID,
		Refused:       true,
		RefusalReason: reason,
		Citations:     []models.Citation{},
	}
}

func matchesAllTokens(content string, tokens []string) bool {
	lower := strings.ToLower(content)
	for _, token := range tokens {
		if !strings.Contains(lower, token) {
			return false
		}
	}
	return true
}

func excerpt(content string) string {
	if len(content) <= excerptLength {
		return content
	}
	return content[:excerptLength]
}
