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

// UserContextRepository provides data access for per-project user
// contexts.
type UserContextRepository interface {
	// Get returns the context row for a project, or nil if none exists.
	// Callers synthesize defaults for missing rows; this layer never
	// fabricates them.
	Get(ctx context.Context, projectID uuid.UUID) (*models.UserContext, error)

	// Upsert creates or updates the locale/jurisdiction/scope fields,
	// preserving any existing snapshot pointer.
	Upsert(ctx context.Context, uc *models.UserContext) error

	// SetSnapshot repoints the project's active snapshot, creating the
	// context row with defaults if it does not exist yet.
	SetSnapshot(ctx context.Context, projectID, snapshotID uuid.UUID) error
}

type userContextRepository struct{}

// NewUserContextRepository creates a new UserContextRepository.
func NewUserContextRepository() UserContextRepository {
	return &userContextRepository{}
}

var _ UserContextRepository = (*userContextRepository)(nil)

func (r *userContextRepository) Get(ctx context.Context, projectID uuid.UUID) (*models.UserContext, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT project_id, locale, jurisdiction, allowed_scope, kb_snapshot_id, updated_at
		FROM kb_user_contexts
		WHERE project_id = $1`

	var uc models.UserContext
	err := scope.Conn.QueryRow(ctx, query, projectID).Scan(
		&uc.ProjectID,
		&uc.Locale,
		&uc.Jurisdiction,
		&uc.AllowedScope,
		&uc.KBSnapshotID,
		&uc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user context: %w", err)
	}

	return &uc, nil
}

func (r *userContextRepository) Upsert(ctx context.Context, uc *models.UserContext) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO kb_user_contexts (project_id, locale, jurisdiction, allowed_scope, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id) DO UPDATE
		SET locale = EXCLUDED.locale,
		    jurisdiction = EXCLUDED.jurisdiction,
		    allowed_scope = EXCLUDED.allowed_scope,
		    updated_at = EXCLUDED.updated_at
		RETURNING kb_snapshot_id, updated_at`

	now := time.Now()
	err := scope.Conn.QueryRow(ctx, query,
		uc.ProjectID,
		uc.Locale,
		uc.Jurisdiction,
		uc.AllowedScope,
		now,
	).Scan(&uc.KBSnapshotID, &uc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user context: %w", err)
	}

	return nil
}

func (r *userContextRepository) SetSnapshot(ctx context.Context, projectID, snapshotID uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO kb_user_contexts (project_id, kb_snapshot_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id) DO UPDATE
		SET kb_snapshot_id = EXCLUDED.kb_snapshot_id,
		    updated_at = EXCLUDED.updated_at`

	_, err := scope.Conn.Exec(ctx, query, projectID, snapshotID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set snapshot pointer: %w", err)
	}

	return nil
}
