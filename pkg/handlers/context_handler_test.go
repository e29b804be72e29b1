package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/apperrors"
	"github.com/juristack/juristack-engine/pkg/models"
)

func TestContextHandler_Get(t *testing.T) {
	projectID := uuid.New()

	t.Run("returns defaults for unconfigured project", func(t *testing.T) {
		svc := &mockContextService{
			getFunc: func(_ context.Context, pid uuid.UUID) (*models.UserContext, error) {
				return models.DefaultUserContext(pid), nil
			},
		}
		handler := NewContextHandler(svc, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/projects/"+projectID.String()+"/context", nil)
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, models.DefaultLocale, data["locale"])
		assert.Equal(t, models.DefaultJurisdiction, data["jurisdiction"])
		assert.NotContains(t, data, "kb_snapshot_id")
	})

	t.Run("invalid project id", func(t *testing.T) {
		handler := NewContextHandler(&mockContextService{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/projects/bad/context", nil)
		req.SetPathValue("pid", "bad")
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestContextHandler_Set(t *testing.T) {
	projectID := uuid.New()

	t.Run("upserts context", func(t *testing.T) {
		svc := &mockContextService{
			setFunc: func(_ context.Context, pid uuid.UUID, locale, jurisdiction, allowedScope string) (*models.UserContext, error) {
				assert.Equal(t, projectID, pid)
				assert.Equal(t, "de-DE", locale)
				return &models.UserContext{ProjectID: pid, Locale: locale, Jurisdiction: jurisdiction, AllowedScope: allowedScope}, nil
			},
		}
		handler := NewContextHandler(svc, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/context", SetUserContextRequest{
			Locale:       "de-DE",
			Jurisdiction: "EU",
			AllowedScope: models.ScopeGenericInfo,
		})
		req.Method = http.MethodPut
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Set(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "de-DE", data["locale"])
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewContextHandler(&mockContextService{}, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/context", SetUserContextRequest{Locale: "en-GB"})
		req.Method = http.MethodPut
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Set(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_error", decodeErrorBody(t, rec)["error"])
	})

	t.Run("invalid scope rejected by service", func(t *testing.T) {
		svc := &mockContextService{
			setFunc: func(_ context.Context, _ uuid.UUID, _, _, _ string) (*models.UserContext, error) {
				return nil, apperrors.ErrValidation
			},
		}
		handler := NewContextHandler(svc, zap.NewNop())

		req := postJSON(t, "/api/projects/"+projectID.String()+"/context", SetUserContextRequest{
			Locale:       "en-GB",
			Jurisdiction: "EU",
			AllowedScope: "unrestricted",
		})
		req.Method = http.MethodPut
		req.SetPathValue("pid", projectID.String())
		rec := httptest.NewRecorder()
		handler.Set(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
