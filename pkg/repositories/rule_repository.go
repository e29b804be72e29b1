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

// RuleRepository provides data access for rule identities.
type RuleRepository interface {
	// Create inserts a new rule.
	Create(ctx context.Context, rule *models.Rule) error

	// GetByID returns a rule by ID, or nil if it does not exist.
	GetByID(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error)

	// GetByIDForUpdate returns a rule by ID holding a row lock until the
	// surrounding transaction ends. Used to serialize version allocation
	// per rule.
	GetByIDForUpdate(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error)

	// ListByProject returns all rules for a project ordered by creation time.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Rule, error)
}

type ruleRepository struct{}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository() RuleRepository {
	return &ruleRepository{}
}

var _ RuleRepository = (*ruleRepository)(nil)

func (r *ruleRepository) Create(ctx context.Context, rule *models.Rule) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO kb_rules (project_id, jurisdiction, topic_key, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	now := time.Now()
	err := scope.Conn.QueryRow(ctx, query,
		rule.ProjectID,
		rule.Jurisdiction,
		rule.TopicKey,
		now,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func (r *ruleRepository) GetByID(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	return r.get(ctx, ruleID, false)
}

func (r *ruleRepository) GetByIDForUpdate(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	return r.get(ctx, ruleID, true)
}

func (r *ruleRepository) get(ctx context.Context, ruleID uuid.UUID, forUpdate bool) (*models.Rule, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, jurisdiction, topic_key, created_at
		FROM kb_rules
		WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var rule models.Rule
	err := scope.Conn.QueryRow(ctx, query, ruleID).Scan(
		&rule.ID,
		&rule.ProjectID,
		&rule.Jurisdiction,
		&rule.TopicKey,
		&rule.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return &rule, nil
}

func (r *ruleRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Rule, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, project_id, jurisdiction, topic_key, created_at
		FROM kb_rules
		WHERE project_id = $1
		ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		var rule models.Rule
		if err := rows.Scan(
			&rule.ID,
			&rule.ProjectID,
			&rule.Jurisdiction,
			&rule.TopicKey,
			&rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}
