package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/service"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type fakeReportService struct {
	request  service.ReportRequest
	statusID string
	path     string
	format   models.ReportFormat
	err      error
}

func (f *fakeReportService) CreateJob(_ context.Context, req service.ReportRequest, _ models.Actor) (*models.ReportJob, error) {
	f.request = req
	return &models.ReportJob{ID: "job-1", Type: req.Type, Params: models.ReportJobParams{RUT: req.RUT, Format: req.Format}, Status: models.ReportStatusQueued}, nil
}

func (f *fakeReportService) GetStatus(_ context.Context, id string, _ models.Actor) (*models.ReportJob, error) {
	f.statusID = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReportJob{ID: id, Status: models.ReportStatusFinished, Progress: 100}, nil
}

func (f *fakeReportService) ResolveDownload(context.Context, string) (*service.ReportDownload, error) {
	if f.err != nil {
		return nil, f.err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	return &service.ReportDownload{File: file, Filename: filepath.Base(f.path), Format: f.format}, nil
}

func reportRouter(svc *fakeReportService) http.Handler {
	router := newTestRouter(adminClaims)
	h := NewReportHandler(svc)
	router.POST("/reports", h.Create)
	router.GET("/reports/:id", h.Status)
	router.GET("/reports/download/:token", h.Download)
	return router
}

func TestReportHandlerCreate(t *testing.T) {
	svc := &fakeReportService{}
	rec := doRequest(reportRouter(svc), http.MethodPost, "/reports", map[string]string{
		"type": "student_case", "rut": "1-9", "format": "pdf",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, models.ReportTypeStudentCase, svc.request.Type)
	assert.Equal(t, "1-9", svc.request.RUT)
	assert.Contains(t, rec.Body.String(), `"id":"job-1"`)
}

func TestReportHandlerStatus(t *testing.T) {
	svc := &fakeReportService{}
	rec := doRequest(reportRouter(svc), http.MethodGet, "/reports/job-9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "job-9", svc.statusID)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	rec = doRequest(reportRouter(svc), http.MethodGet, "/reports/job-9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nomina_20240701_job1.csv")
	require.NoError(t, os.WriteFile(path, []byte("\"rut\"\r\n\"1-9\"\r\n"), 0o600))
	svc := &fakeReportService{path: path, format: models.ReportFormatCSV}

	rec := doRequest(reportRouter(svc), http.MethodGet, "/reports/download/tok", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=nomina_20240701_job1.csv", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\"rut\"\r\n\"1-9\"\r\n", rec.Body.String())
}

func TestReportHandlerDownloadRejected(t *testing.T) {
	svc := &fakeReportService{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")}
	rec := doRequest(reportRouter(svc), http.MethodGet, "/reports/download/bad", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
