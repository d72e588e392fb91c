package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type fakeStudentService struct {
	filter      models.StudentFilter
	actor       models.Actor
	created     service.CreateStudentRequest
	updatedRUT  string
	reentryRUT  string
	detailErr   error
	alerts      []models.FollowUpAlert
	activeYears []models.YearCount
}

func (f *fakeStudentService) List(_ context.Context, filter models.StudentFilter, actor models.Actor) ([]models.Student, *models.Pagination, error) {
	f.filter = filter
	f.actor = actor
	return []models.Student{{RUT: "1-9", Nombre: "Ana"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeStudentService) Alerts(_ context.Context, actor models.Actor) ([]models.FollowUpAlert, error) {
	f.actor = actor
	return f.alerts, nil
}

func (f *fakeStudentService) ActiveByYear(context.Context) ([]models.YearCount, error) {
	return f.activeYears, nil
}

func (f *fakeStudentService) Create(_ context.Context, req service.CreateStudentRequest, actor models.Actor) (*models.Student, error) {
	f.created = req
	f.actor = actor
	return &models.Student{RUT: req.RUT, Nombre: req.Nombre}, nil
}

func (f *fakeStudentService) Detail(_ context.Context, rut string, _ models.Actor) (*service.StudentDetail, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return &service.StudentDetail{Student: models.Student{RUT: rut}}, nil
}

func (f *fakeStudentService) Update(_ context.Context, rut string, _ service.StudentInput, _ models.Actor) (*service.StudentUpdateResult, error) {
	f.updatedRUT = rut
	return &service.StudentUpdateResult{Student: models.Student{RUT: rut}}, nil
}

func (f *fakeStudentService) Reentry(_ context.Context, rut string, _ service.ReentryRequest, _ models.Actor) (*service.ReentryResult, error) {
	f.reentryRUT = rut
	return &service.ReentryResult{Student: models.Student{RUT: rut, EstadoEnPrograma: "Activo (Reingreso)"}}, nil
}

func studentRouter(svc *fakeStudentService) http.Handler {
	router := newTestRouter(professionalClaims)
	h := NewStudentHandler(svc)
	router.GET("/students", h.List)
	router.GET("/students/alerts", h.Alerts)
	router.GET("/students/active-by-year", h.ActiveByYear)
	router.POST("/students", h.Create)
	router.GET("/students/:rut", h.Detail)
	router.PUT("/students/:rut", h.Update)
	router.POST("/students/:rut/reentries", h.Reentry)
	return router
}

func TestStudentHandlerListParsesFilter(t *testing.T) {
	svc := &fakeStudentService{}
	rec := doRequest(studentRouter(svc), http.MethodGet, "/students?search=%20rojas%20&estado=Activo&show_archived=true&page=2&page_size=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rojas", svc.filter.Search)
	assert.Equal(t, "Activo", svc.filter.Estado)
	assert.True(t, svc.filter.ShowArchived)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Equal(t, 10, svc.filter.PageSize)
	assert.Equal(t, "Paula Rojas", svc.actor.FullName)
	assert.Equal(t, "handler-test", svc.actor.Agent)

	env := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, env.Pagination["total_count"])
}

func TestStudentHandlerListDefaults(t *testing.T) {
	svc := &fakeStudentService{}
	rec := doRequest(studentRouter(svc), http.MethodGet, "/students?page=abc&show_archived=nope", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.filter.ShowArchived)
	assert.Equal(t, 1, svc.filter.Page)
	assert.Equal(t, 50, svc.filter.PageSize)
}

func TestStudentHandlerAlertsMeta(t *testing.T) {
	days := 45
	svc := &fakeStudentService{alerts: []models.FollowUpAlert{
		{StudentLastSession: models.StudentLastSession{RUT: "1-9"}, DiasSinSeguimiento: &days},
		{StudentLastSession: models.StudentLastSession{RUT: "2-7"}},
	}}
	rec := doRequest(studentRouter(svc), http.MethodGet, "/students/alerts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.EqualValues(t, 2, env.Meta["total"])
}

func TestStudentHandlerCreate(t *testing.T) {
	svc := &fakeStudentService{}
	rec := doRequest(studentRouter(svc), http.MethodPost, "/students", map[string]interface{}{
		"rut": "12345678-9", "nombre": "Ana", "apellido_paterno": "Rojas", "fecha_ingreso_programa": "2024-03-01",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "12345678-9", svc.created.RUT)
	require.NotNil(t, svc.created.FechaIngresoPrograma)
	assert.Equal(t, "2024-03-01", svc.created.FechaIngresoPrograma.String())
}

func TestStudentHandlerCreateRejectsBadDate(t *testing.T) {
	rec := doRequest(studentRouter(&fakeStudentService{}), http.MethodPost, "/students", map[string]interface{}{
		"rut": "1-9", "fecha_ingreso_programa": "01/03/2024",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerDetailErrors(t *testing.T) {
	svc := &fakeStudentService{detailErr: appErrors.Clone(appErrors.ErrNotFound, "student not found")}
	rec := doRequest(studentRouter(svc), http.MethodGet, "/students/1-9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.detailErr = appErrors.ErrNotAssigned
	rec = doRequest(studentRouter(svc), http.MethodGet, "/students/1-9", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "NOT_ASSIGNED", env.Error["code"])
}

func TestStudentHandlerUpdateAndReentry(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentRouter(svc)

	rec := doRequest(router, http.MethodPut, "/students/1-9", map[string]string{"nombre": "Ana"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1-9", svc.updatedRUT)

	rec = doRequest(router, http.MethodPost, "/students/1-9/reentries", map[string]string{
		"fecha_ingreso": "2024-08-01", "motivo_ingreso": "Ideación",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1-9", svc.reentryRUT)

	var result service.ReentryResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, "Activo (Reingreso)", result.Student.EstadoEnPrograma)
}
