package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/repository"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/jobs"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/storage"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListPending(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type reportContentBuilder interface {
	Build(ctx context.Context, job *models.ReportJob) (*ReportContent, error)
}

// ReportRequest asks for an asynchronous report.
type ReportRequest struct {
	Type   models.ReportType   `json:"type" validate:"required,oneof=dashboard student_case caseload"`
	RUT    string              `json:"rut" validate:"required_if=Type student_case,max=20"`
	Format models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportServiceConfig governs download links, queue recovery and cleanup.
type ReportServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload is an opened report file ready to be streamed.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportService manages the report job lifecycle seen by clients.
type ReportService struct {
	repo      reportJobStore
	students  studentFinder
	queue     jobDispatcher
	files     fileStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
	now       func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, students studentFinder, queue jobDispatcher, files fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = catalog.NewValidator()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ReportService{
		repo:      repo,
		students:  students,
		queue:     queue,
		files:     files,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CreateJob validates the request, persists the job and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req ReportRequest, actor models.Actor) (*models.ReportJob, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req.RUT = strings.TrimSpace(req.RUT)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid report request")
	}
	if req.Type == models.ReportTypeStudentCase {
		if _, err := s.students.FindByRUT(ctx, req.RUT); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado")
			}
			return nil, internalError(err, "failed to load student")
		}
	} else {
		req.RUT = ""
	}

	job := &models.ReportJob{
		Type:      req.Type,
		Params:    models.ReportJobParams{RUT: req.RUT, Format: req.Format},
		Status:    models.ReportStatusQueued,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, internalError(err, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		status := models.ReportStatusFailed
		msg := "failed to enqueue job"
		progress := 100
		now := s.now().UTC()
		if updateErr := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		}); updateErr != nil {
			s.logger.Warn("failed to mark unqueued job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return nil, internalError(err, "failed to enqueue report job")
	}
	s.logger.Info("report job queued",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Params.Format)),
		zap.String("by", actor.Username))
	return job, nil
}

// GetStatus returns the job metadata.
func (s *ReportService) GetStatus(ctx context.Context, id string, actor models.Actor) (*models.ReportJob, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reporte no encontrado")
		}
		return nil, internalError(err, "failed to load report job")
	}
	return job, nil
}

// ResolveDownload validates a signed token and opens the stored file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	obj, err := s.signer.Verify(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, obj.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reporte no encontrado")
		}
		return nil, internalError(err, "failed to load report job")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	if job.ResultURL == nil || extractToken(*job.ResultURL) != token {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.files.Open(obj.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report file expired")
		}
		return nil, internalError(err, "failed to open report file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(obj.Path),
		Format:    job.Params.Format,
		ExpiresAt: obj.ExpiresAt,
	}, nil
}

// RecoverPendingJobs re-enqueues jobs left queued or processing by a previous run.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) int {
	pending, err := s.repo.ListPending(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover pending report jobs", zap.Error(err))
		return 0
	}
	recovered := 0
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue pending job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	if recovered > 0 {
		s.logger.Info("recovered pending report jobs", zap.Int("count", recovered))
	}
	return recovered
}

// StartCleanup purges expired report files every CleanupInterval until ctx is done.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes files of jobs finished before the retention window and any
// stray file older than it.
func (s *ReportService) CleanupExpired(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	const batch = 100
	finished, err := s.repo.ListFinishedBefore(ctx, cutoff, batch)
	if err != nil {
		s.logger.Warn("report cleanup list failed", zap.Error(err))
		return
	}
	for _, job := range finished {
		if job.ResultURL == nil {
			continue
		}
		obj, err := s.signer.Verify(extractToken(*job.ResultURL), true)
		if err != nil {
			continue
		}
		if err := s.files.Delete(obj.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("report cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	removed, err := s.files.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("report storage cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired report files removed", zap.Int("count", len(removed)))
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ReportWorker renders queued jobs and stores the result.
type ReportWorker struct {
	repo      reportJobStore
	builder   reportContentBuilder
	files     fileStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	metrics   *MetricsService
	logger    *zap.Logger
	apiPrefix string
	now       func() time.Time
}

// ReportWorkerDeps groups worker collaborators.
type ReportWorkerDeps struct {
	Repo      reportJobStore
	Builder   reportContentBuilder
	Files     fileStorage
	Signer    *storage.SignedURLSigner
	Metrics   *MetricsService
	Logger    *zap.Logger
	APIPrefix string
}

// NewReportWorker constructs a worker.
func NewReportWorker(deps ReportWorkerDeps) *ReportWorker {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.APIPrefix == "" {
		deps.APIPrefix = "/api/v1"
	}
	return &ReportWorker{
		repo:      deps.Repo,
		builder:   deps.Builder,
		files:     deps.Files,
		signer:    deps.Signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		apiPrefix: strings.TrimRight(deps.APIPrefix, "/"),
		now:       time.Now,
	}
}

// Handle processes one queue job. A returned error lets the queue retry it.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", job.ID, err)
	}
	if record.Status.Terminal() {
		return nil
	}
	processing := models.ReportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	url, err := w.render(ctx, record)
	if err != nil {
		msg := err.Error()
		queued := models.ReportStatusQueued
		reset := 0
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Warn("failed to mark job queued", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ReportStatusFinished
	progress = 100
	now := w.now().UTC()
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	w.metrics.ObserveReportJob(record.Type, finished)
	w.logger.Info("report job finished", zap.String("job_id", job.ID), zap.String("type", string(record.Type)))
	return nil
}

// MarkExhausted records the final failure once the queue gives up on a job.
func (w *ReportWorker) MarkExhausted(ctx context.Context, job jobs.Job, cause error) {
	failed := models.ReportStatusFailed
	progress := 100
	msg := cause.Error()
	now := w.now().UTC()
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	w.metrics.ObserveReportJob(models.ReportType(job.Type), failed)
}

func (w *ReportWorker) render(ctx context.Context, job *models.ReportJob) (string, error) {
	content, err := w.builder.Build(ctx, job)
	if err != nil {
		return "", err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = w.csv.Render(content.Table)
	case models.ReportFormatPDF:
		payload, err = w.pdf.Render(content.Document)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s_%s.%s",
		sanitizeFilename(content.Name), w.now().UTC().Format("20060102_150405"), shortID(job.ID), job.Params.Format)
	relPath, err := w.files.Save(filename, payload)
	if err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}
	token, _, err := w.signer.Sign(job.ID, relPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/reports/download/%s", w.apiPrefix, token), nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "reporte"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", ".", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
