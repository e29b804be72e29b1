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

// SnapshotRepository provides data access for published snapshots.
// Snapshots are insert-only: no update or delete operation exists.
type SnapshotRepository interface {
	// Create inserts a new snapshot with its frozen id set.
	Create(ctx context.Context, snapshot *models.Snapshot) error

	// GetByID returns a snapshot by ID, or nil if it does not exist.
	GetByID(ctx context.Context, snapshotID uuid.UUID) (*models.Snapshot, error)

	// ListByJurisdiction returns all snapshots for a jurisdiction,
	// newest first.
	ListByJurisdiction(ctx context.Context, jurisdiction string) ([]*models.Snapshot, error)
}

type snapshotRepository struct{}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository() SnapshotRepository {
	return &snapshotRepository{}
}

var _ SnapshotRepository = (*snapshotRepository)(nil)

func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO kb_snapshots (jurisdiction, as_of_date, included_rule_version_ids, published_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, published_at`

	now := time.Now()
	err := scope.Conn.QueryRow(ctx, query,
		snapshot.Jurisdiction,
		snapshot.AsOfDate,
		snapshot.IncludedRuleVersionIDs,
		now,
	).Scan(&snapshot.ID, &snapshot.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

func (r *snapshotRepository) GetByID(ctx context.Context, snapshotID uuid.UUID) (*models.Snapshot, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, jurisdiction, as_of_date, included_rule_version_ids, published_at
		FROM kb_snapshots
		WHERE id = $1`

	var s models.Snapshot
	err := scope.Conn.QueryRow(ctx, query, snapshotID).Scan(
		&s.ID,
		&s.Jurisdiction,
		&s.AsOfDate,
		&s.IncludedRuleVersionIDs,
		&s.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &s, nil
}

func (r *snapshotRepository) ListByJurisdiction(ctx context.Context, jurisdiction string) ([]*models.Snapshot, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, jurisdiction, as_of_date, included_rule_version_ids, published_at
		FROM kb_snapshots
		WHERE jurisdiction = $1
		ORDER BY published_at DESC`

	rows, err := scope.Conn.Query(ctx, query, jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(
			&s.ID,
			&s.Jurisdiction,
			&s.AsOfDate,
			&s.IncludedRuleVersionIDs,
			&s.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
