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

// ReviewTaskRepository provides data access for review tasks.
type ReviewTaskRepository interface {
	// Create inserts an open review task.
	Create(ctx context.Context, task *models.ReviewTask) error

	// GetByID returns a task by ID, or nil if it does not exist.
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.ReviewTask, error)

	// Decide transitions a task from open to decided. Returns false if
	// the task was not open (already decided, or decided concurrently);
	// the status transition is strictly one-way.
	Decide(ctx context.Context, taskID uuid.UUID, decision, decidedBy string) (bool, error)

	// CountOpen returns the number of open tasks across ALL
	// jurisdictions. The publish-readiness gate is global.
	CountOpen(ctx context.Context) (int, error)

	// ListOpen returns all open tasks, oldest first.
	ListOpen(ctx context.Context) ([]*models.ReviewTask, error)

	// ListApprovedProposedVersionIDs returns the distinct proposed rule
	// version IDs of every approve-decided task whose candidate belongs
	// to the given jurisdiction.
	ListApprovedProposedVersionIDs(ctx context.Context, jurisdiction string) ([]uuid.UUID, error)
}

type reviewTaskRepository struct{}

// NewReviewTaskRepository creates a new ReviewTaskRepository.
func NewReviewTaskRepository() ReviewTaskRepository {
	return &reviewTaskRepository{}
}

var _ ReviewTaskRepository = (*reviewTaskRepository)(nil)

const reviewTaskColumns = `id, change_candidate_id, status, assigned_role, decision, decided_by, decided_at, created_at`

func (r *reviewTaskRepository) Create(ctx context.Context, task *models.ReviewTask) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO kb_review_tasks (change_candidate_id, status, assigned_role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := scope.Conn.QueryRow(ctx, query,
		task.ChangeCandidateID,
		task.Status,
		task.AssignedRole,
		time.Now(),
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review task: %w", err)
	}

	return nil
}

func (r *reviewTaskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*models.ReviewTask, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + reviewTaskColumns + ` FROM kb_review_tasks WHERE id = $1`

	var t models.ReviewTask
	err := scope.Conn.QueryRow(ctx, query, taskID).Scan(
		&t.ID,
		&t.ChangeCandidateID,
		&t.Status,
		&t.AssignedRole,
		&t.Decision,
		&t.DecidedBy,
		&t.DecidedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review task: %w", err)
	}

	return &t, nil
}

func (r *reviewTaskRepository) Decide(ctx context.Context, taskID uuid.UUID, decision, decidedBy string) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	// Conditional on status=open so racing decisions cannot both land.
	query := `
		UPDATE kb_review_tasks
		SET status = $2, decision = $3, decided_by = $4, decided_at = $5
		WHERE id = $1 AND status = $6`

	result, err := scope.Conn.Exec(ctx, query,
		taskID,
		models.ReviewTaskStatusDecided,
		decision,
		decidedBy,
		time.Now(),
		models.ReviewTaskStatusOpen,
	)
	if err != nil {
		return false, fmt.Errorf("failed to decide review task: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *reviewTaskRepository) CountOpen(ctx context.Context) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	var count int
	query := `SELECT COUNT(*) FROM kb_review_tasks WHERE status = $1`
	if err := scope.Conn.QueryRow(ctx, query, models.ReviewTaskStatusOpen).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open review tasks: %w", err)
	}

	return count, nil
}

func (r *reviewTaskRepository) ListOpen(ctx context.Context) ([]*models.ReviewTask, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + reviewTaskColumns + ` FROM kb_review_tasks WHERE status = $1 ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, models.ReviewTaskStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list open review tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.ReviewTask
	for rows.Next() {
		var t models.ReviewTask
		if err := rows.Scan(
			&t.ID,
			&t.ChangeCandidateID,
			&t.Status,
			&t.AssignedRole,
			&t.Decision,
			&t.DecidedBy,
			&t.DecidedAt,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review task: %w", err)
		}
		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review tasks: %w", err)
	}

	return tasks, nil
}

func (r *reviewTaskRepository) ListApprovedProposedVersionIDs(ctx context.Context, jurisdiction string) ([]uuid.UUID, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT DISTINCT unnest(c.proposed_rule_version_ids)
		FROM kb_review_tasks t
		JOIN kb_change_candidates c ON c.id = t.change_candidate_id
		WHERE t.status = $1 AND t.decision = $2 AND c.jurisdiction = $3`

	rows, err := scope.Conn.Query(ctx, query,
		models.ReviewTaskStatusDecided,
		models.ReviewDecisionApprove,
		jurisdiction,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved proposed version ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan proposed version id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposed version ids: %w", err)
	}

	return ids, nil
}
