package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
)

type fakeMaintenanceService struct {
	actor models.Actor
}

func (f *fakeMaintenanceService) TrimText(_ context.Context, actor models.Actor) (int64, error) {
	f.actor = actor
	return 3, nil
}

func (f *fakeMaintenanceService) BackfillPeriods(context.Context, models.Actor) (*service.BackfillResult, error) {
	return &service.BackfillResult{Created: 2, Skipped: []string{"9-9"}}, nil
}

func TestMaintenanceHandler(t *testing.T) {
	svc := &fakeMaintenanceService{}
	router := newTestRouter(adminClaims)
	h := NewMaintenanceHandler(svc)
	router.POST("/admin/maintenance/trim-text", h.TrimText)
	router.POST("/admin/maintenance/backfill-periods", h.BackfillPeriods)

	rec := doRequest(router, http.MethodPost, "/admin/maintenance/trim-text", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"estudiantes_actualizados":3`)
	assert.Equal(t, "admin", svc.actor.Username)

	rec = doRequest(router, http.MethodPost, "/admin/maintenance/backfill-periods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"creados":2`)
	assert.Contains(t, rec.Body.String(), `"omitidos":["9-9"]`)
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	router := newTestRouter(nil)
	router.GET("/ready", NewMetricsHandler(nil, map[string]Pinger{"database": healthy, "cache": healthy}).Ready)
	rec := doRequest(router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	router = newTestRouter(nil)
	router.GET("/ready", NewMetricsHandler(nil, map[string]Pinger{"database": healthy, "cache": down}).Ready)
	rec = doRequest(router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"connection refused"`)
}

func TestMetricsHandlerHealthAndPrometheus(t *testing.T) {
	router := newTestRouter(nil)
	h := NewMetricsHandler(service.NewMetricsService(), nil)
	router.GET("/health", h.Health)
	router.GET("/metrics", h.Prometheus)

	rec := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"goroutines"`)

	rec = doRequest(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "seguimiento_cache_hit_ratio")

	router = newTestRouter(nil)
	router.GET("/metrics", NewMetricsHandler(nil, nil).Prometheus)
	rec = doRequest(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
