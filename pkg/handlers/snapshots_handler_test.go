package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/apperrors"
	"github.com/juristack/juristack-engine/pkg/models"
)

func TestSnapshotsHandler_Publish(t *testing.T) {
	projectID := uuid.New()

	t.Run("publishes with explicit as-of date", func(t *testing.T) {
		var gotAsOf time.Time
		svc := &mockSnapshotService{
			publishFunc: func(_ context.Context, pid uuid.UUID, jurisdiction string, asOfDate time.Time) (*models.Snapshot, error) {
				assert.Equal(t, projectID, pid)
				assert.Equal(t, "EU", jurisdiction)
				gotAsOf = asOfDate
				return &models.Snapshot{ID: uuid.New(), Jurisdiction: jurisdiction, AsOfDate: asOfDate}, nil
			},
		}
		handler := NewSnapshotsHandler(svc, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/snapshots", PublishSnapshotRequest{
			Jurisdiction: "EU",
			AsOfDate:     "2026-03-01",
		})
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Publish(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), gotAsOf)
	})

	t.Run("defaults as-of date to now", func(t *testing.T) {
		before := time.Now()
		var gotAsOf time.Time
		svc := &mockSnapshotService{
			publishFunc: func(_ context.Context, _ uuid.UUID, _ string, asOfDate time.Time) (*models.Snapshot, error) {
				gotAsOf = asOfDate
				return &models.Snapshot{ID: uuid.New()}, nil
			},
		}
		handler := NewSnapshotsHandler(svc, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/snapshots", PublishSnapshotRequest{Jurisdiction: "EU"})
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Publish(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.False(t, gotAsOf.Before(before))
	})

	t.Run("bad as-of date", func(t *testing.T) {
		handler := NewSnapshotsHandler(&mockSnapshotService{}, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/snapshots", PublishSnapshotRequest{
			Jurisdiction: "EU",
			AsOfDate:     "March 1st",
		})
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Publish(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_error", decodeErrorBody(t, rec)["error"])
	})

	t.Run("no approved rules", func(t *testing.T) {
		svc := &mockSnapshotService{
			publishFunc: func(_ context.Context, _ uuid.UUID, _ string, _ time.Time) (*models.Snapshot, error) {
				return nil, apperrors.ErrNoApprovedRules
			},
		}
		handler := NewSnapshotsHandler(svc, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/snapshots", PublishSnapshotRequest{Jurisdiction: "EU"})
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Publish(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "NO_APPROVED_RULES", decodeErrorBody(t, rec)["error"])
	})
}

func TestSnapshotsHandler_Get(t *testing.T) {
	snapshotID := uuid.New()

	t.Run("returns snapshot", func(t *testing.T) {
		svc := &mockSnapshotService{
			getFunc: func(_ context.Context, sid uuid.UUID) (*models.Snapshot, error) {
				return &models.Snapshot{ID: sid, Jurisdiction: "EU", IncludedRuleVersionIDs: []uuid.UUID{uuid.New()}}, nil
			},
		}
		handler := NewSnapshotsHandler(svc, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/snapshots/"+snapshotID.String(), nil)
		req.SetPathValue("sid", snapshotID.String())
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, snapshotID.String(), data["id"])
	})

	t.Run("unknown snapshot", func(t *testing.T) {
		svc := &mockSnapshotService{
			getFunc: func(_ context.Context, _ uuid.UUID) (*models.Snapshot, error) {
				return nil, apperrors.ErrSnapshotNotFound
			},
		}
		handler := NewSnapshotsHandler(svc, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/snapshots/"+snapshotID.String(), nil)
		req.SetPathValue("sid", snapshotID.String())
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "SNAPSHOT_NOT_FOUND", decodeErrorBody(t, rec)["error"])
	})
}

func TestSnapshotsHandler_List(t *testing.T) {
	svc := &mockSnapshotService{
		listFunc: func(_ context.Context, jurisdiction string) ([]*models.Snapshot, error) {
			assert.Equal(t, "EU", jurisdiction)
			return []*models.Snapshot{
				{ID: uuid.New(), Jurisdiction: "EU"},
				{ID: uuid.New(), Jurisdiction: "EU"},
			}, nil
		},
	}
	handler := NewSnapshotsHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/jurisdictions/EU/snapshots", nil)
	req.SetPathValue("jurisdiction", "EU")
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
}
