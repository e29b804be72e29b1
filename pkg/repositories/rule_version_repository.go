package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/juristack/juristack-engine/pkg/database"
	"github.com/juristack/juristack-engine/pkg/models"
)

// RuleVersionRepository provides data access for the append-only rule
// version history.
type RuleVersionRepository interface {
	// NextVersion returns max(version)+1 for the rule. The caller must
	// hold the rule's row lock (see RuleRepository.GetByIDForUpdate) so
	// concurrent allocations for the same rule serialize.
	NextVersion(ctx context.Context, ruleID uuid.UUID) (int, error)

	// Create inserts a new version row. Version and status must already
	// be set by the caller.
	Create(ctx context.Context, version *models.RuleVersion) error

	// GetByID returns a version by ID, or nil if it does not exist.
	GetByID(ctx context.Context, versionID uuid.UUID) (*models.RuleVersion, error)

	// ListByRule returns all versions of a rule ordered by version number.
	ListByRule(ctx context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error)

	// Approve transitions a version to approved, recording approver and
	// timestamp. Re-approval overwrites approver and timestamp; the
	// status transition itself is one-way.
	Approve(ctx context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error)

	// ListApprovedIDsByJurisdiction returns the IDs of all approved
	// versions in a jurisdiction, ordered by ID. This is the frozen set
	// a snapshot is built from.
	ListApprovedIDsByJurisdiction(ctx context.Context, jurisdiction string) ([]uuid.UUID, error)

	// GetByIDs returns the versions for the given IDs, preserving the
	// order of the id slice. Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.RuleVersion, error)

	// CountUnapproved returns how many of the given IDs are missing or
	// not yet approved.
	CountUnapproved(ctx context.Context, ids []uuid.UUID) (int, error)
}

type ruleVersionRepository struct{}

// NewRuleVersionRepository creates a new RuleVersionRepository.
func NewRuleVersionRepository() RuleVersionRepository {
	return &ruleVersionRepository{}
}

var _ RuleVersionRepository = (*ruleVersionRepository)(nil)

const ruleVersionColumns = `id, rule_id, jurisdiction, topic_key, version, content, status, source_refs, approved_by, approved_at, created_at`

func (r *ruleVersionRepository) NextVersion(ctx context.Context, ruleID uuid.UUID) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	var next int
	query := `SELECT COALESCE(MAX(version), 0) + 1 FROM kb_rule_versions WHERE rule_id = $1`
	if err := scope.Conn.QueryRow(ctx, query, ruleID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next version: %w", err)
	}

	return next, nil
}

func (r *ruleVersionRepository) Create(ctx context.Context, version *models.RuleVersion) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	refs, err := json.Marshal(version.SourceRefs)
	if err != nil {
		return fmt.Errorf("failed to marshal source refs: %w", err)
	}

	query := `
		INSERT INTO kb_rule_versions (rule_id, jurisdiction, topic_key, version, content, status, source_refs, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	now := time.Now()
	err = scope.Conn.QueryRow(ctx, query,
		version.RuleID,
		version.Jurisdiction,
		version.TopicKey,
		version.Version,
		version.Content,
		version.Status,
		refs,
		now,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule version: %w", err)
	}

	return nil
}

func (r *ruleVersionRepository) GetByID(ctx context.Context, versionID uuid.UUID) (*models.RuleVersion, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + ruleVersionColumns + ` FROM kb_rule_versions WHERE id = $1`
	row := scope.Conn.QueryRow(ctx, query, versionID)

	version, err := scanRuleVersion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return version, nil
}

func (r *ruleVersionRepository) ListByRule(ctx context.Context, ruleID uuid.UUID) ([]*models.RuleVersion, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + ruleVersionColumns + ` FROM kb_rule_versions WHERE rule_id = $1 ORDER BY version`
	rows, err := scope.Conn.Query(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule versions: %w", err)
	}
	defer rows.Close()

	return scanRuleVersions(rows)
}

func (r *ruleVersionRepository) Approve(ctx context.Context, versionID uuid.UUID, approver string) (*models.RuleVersion, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE kb_rule_versions
		SET status = $2, approved_by = $3, approved_at = $4
		WHERE id = $1
		RETURNING ` + ruleVersionColumns

	now := time.Now()
	row := scope.Conn.QueryRow(ctx, query, versionID, models.RuleVersionStatusApproved, approver, now)

	version, err := scanRuleVersion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to approve rule version: %w", err)
	}

	return version, nil
}

func (r *ruleVersionRepository) ListApprovedIDsByJurisdiction(ctx context.Context, jurisdiction string) ([]uuid.UUID, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id FROM kb_rule_versions
		WHERE jurisdiction = $1 AND status = $2
		ORDER BY id`

	rows, err := scope.Conn.Query(ctx, query, jurisdiction, models.RuleVersionStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved version ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan version id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating version ids: %w", err)
	}

	return ids, nil
}

func (r *ruleVersionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.RuleVersion, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + ruleVersionColumns + ` FROM kb_rule_versions WHERE id = ANY($1)`
	rows, err := scope.Conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule versions: %w", err)
	}
	defer rows.Close()

	versions, err := scanRuleVersions(rows)
	if err != nil {
		return nil, err
	}

	// Re-order to match the caller's id list; for snapshot-scoped reads
	// that list is the snapshot's frozen insertion order.
	byID := make(map[uuid.UUID]*models.RuleVersion, len(versions))
	for _, v := range versions {
		byID[v.ID] = v
	}

	ordered := make([]*models.RuleVersion, 0, len(versions))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}

	return ordered, nil
}

func (r *ruleVersionRepository) CountUnapproved(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	// Missing rows count as unapproved: an id that resolves to nothing
	// can never have passed review.
	query := `
		SELECT COUNT(*) FROM unnest($1::uuid[]) AS proposed(id)
		WHERE NOT EXISTS (
			SELECT 1 FROM kb_rule_versions v
			WHERE v.id = proposed.id AND v.status = $2
		)`

	var count int
	if err := scope.Conn.QueryRow(ctx, query, ids, models.RuleVersionStatusApproved).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unapproved versions: %w", err)
	}

	return count, nil
}

// Helper functions

func scanRuleVersions(rows pgx.Rows) ([]*models.RuleVersion, error) {
	var versions []*models.RuleVersion
	for rows.Next() {
		version, err := scanRuleVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule versions: %w", err)
	}

	return versions, nil
}

func scanRuleVersion(row pgx.Row) (*models.RuleVersion, error) {
	var v models.RuleVersion
	var refs []byte

	err := row.Scan(
		&v.ID,
		&v.RuleID,
		&v.Jurisdiction,
		&v.TopicKey,
		&v.Version,
		&v.Content,
		&v.Status,
		&refs,
		&v.ApprovedBy,
		&v.ApprovedAt,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan rule version: %w", err)
	}

	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &v.SourceRefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source refs: %w", err)
		}
	}

	return &v, nil
}
