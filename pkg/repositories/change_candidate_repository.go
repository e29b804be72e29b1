package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/juristack/juristack-engine/pkg/database"
	"github.com/juristack/juristack-engine/pkg/models"
)

// ChangeCandidateRepository provides data access for detected change
// candidates.
type ChangeCandidateRepository interface {
	// Create inserts a change candidate.
	Create(ctx context.Context, candidate *models.ChangeCandidate) error

	// GetByID returns a candidate by ID, or nil if it does not exist.
	GetByID(ctx context.Context, candidateID uuid.UUID) (*models.ChangeCandidate, error)

	// ListByJurisdiction returns candidates for a jurisdiction, newest first.
	ListByJurisdiction(ctx context.Context, jurisdiction string) ([]*models.ChangeCandidate, error)
}

type changeCandidateRepository struct{}

// NewChangeCandidateRepository creates a new ChangeCandidateRepository.
func NewChangeCandidateRepository() ChangeCandidateRepository {
	return &changeCandidateRepository{}
}

var _ ChangeCandidateRepository = (*changeCandidateRepository)(nil)

const changeCandidateColumns = `id, project_id, jurisdiction, detected_at, diff_summary, risk_level, proposed_rule_version_ids`

func (r *changeCandidateRepository) Create(ctx context.Context, candidate *models.ChangeCandidate) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO kb_change_candidates (project_id, jurisdiction, detected_at, diff_summary, risk_level, proposed_rule_version_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, detected_at`

	proposed := candidate.ProposedRuleVersionIDs
	if proposed == nil {
		proposed = []uuid.UUID{}
	}

	err := scope.Conn.QueryRow(ctx, query,
		candidate.ProjectID,
		candidate.Jurisdiction,
		time.Now(),
		candidate.DiffSummary,
		candidate.RiskLevel,
		proposed,
	).Scan(&candidate.ID, &candidate.DetectedAt)
	if err != nil {
		return fmt.Errorf("failed to create change candidate: %w", err)
	}

	return nil
}

func (r *changeCandidateRepository) GetByID(ctx context.Context, candidateID uuid.UUID) (*models.ChangeCandidate, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + changeCandidateColumns + ` FROM kb_change_candidates WHERE id = $1`

	var c models.ChangeCandidate
	err := scope.Conn.QueryRow(ctx, query, candidateID).Scan(
		&c.ID,
		&c.ProjectID,
		&c.Jurisdiction,
		&c.DetectedAt,
		&c.DiffSummary,
		&c.RiskLevel,
		&c.ProposedRuleVersionIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get change candidate: %w", err)
	}

	return &c, nil
}

func (r *changeCandidateRepository) ListByJurisdiction(ctx context.Context, jurisdiction string) ([]*models.ChangeCandidate, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + changeCandidateColumns + ` FROM kb_change_candidates WHERE jurisdiction = $1 ORDER BY detected_at DESC`

	rows, err := scope.Conn.Query(ctx, query, jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("failed to list change candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.ChangeCandidate
	for rows.Next() {
		var c models.ChangeCandidate
		if err := rows.Scan(
			&c.ID,
			&c.ProjectID,
			&c.Jurisdiction,
			&c.DetectedAt,
			&c.DiffSummary,
			&c.RiskLevel,
			&c.ProposedRuleVersionIDs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan change candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change candidates: %w", err)
	}

	return candidates, nil
}
