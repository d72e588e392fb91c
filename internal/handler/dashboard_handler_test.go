package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

type fakeDashboardSrv struct {
	summary *models.DashboardSummary
	hit     bool
	err     error
}

func (f *fakeDashboardSrv) Summary(context.Context) (*models.DashboardSummary, bool, error) {
	return f.summary, f.hit, f.err
}

func TestDashboardHandlerSummary(t *testing.T) {
	router := newTestRouter(professionalClaims)
	router.GET("/dashboard", NewDashboardHandler(&fakeDashboardSrv{
		summary: &models.DashboardSummary{
			ByProgramStatus: []models.LabelCount{{Label: "Activo", Total: 4}},
			IntakeByYear:    []models.IntakeByYear{{Year: 2024, Ideacion: 2, Tentativa: 1}},
		},
		hit: true,
	}).Summary)

	rec := doRequest(router, http.MethodGet, "/dashboard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"por_estado_programa":[{`)
}

func TestDashboardHandlerError(t *testing.T) {
	router := newTestRouter(adminClaims)
	router.GET("/dashboard", NewDashboardHandler(&fakeDashboardSrv{err: errors.New("boom")}).Summary)

	rec := doRequest(router, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", env.Error["code"])
}
