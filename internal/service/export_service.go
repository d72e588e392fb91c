package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
)

// Download filenames and empty-table messages for the CSV exports.
const (
	StudentsCSVFilename = "estudiantes_seguimiento.csv"
	SessionsCSVFilename = "seguimientos_programa.csv"

	emptyStudentsMessage = "No hay datos de estudiantes para descargar."
	emptySessionsMessage = "No hay datos de seguimientos para descargar."
)

type datasetSource interface {
	ExportDataset(ctx context.Context) (export.Dataset, error)
}

// CSVFile is a rendered export ready to be streamed as an attachment.
type CSVFile struct {
	Filename string
	Rows     int
	Content  []byte
}

// ExportService renders whole-table CSV dumps for administrators.
type ExportService struct {
	students datasetSource
	sessions datasetSource
	audit    auditRecorder
	csv      *export.CSVExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(students, sessions datasetSource, audit auditRecorder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		sessions: sessions,
		audit:    audit,
		csv:      export.NewCSVExporter(),
		logger:   logger,
	}
}

// StudentsCSV dumps every student column.
func (s *ExportService) StudentsCSV(ctx context.Context, actor models.Actor) (*CSVFile, error) {
	return s.render(ctx, actor, s.students, StudentsCSVFilename, emptyStudentsMessage)
}

// SessionsCSV dumps every session together with the student's entry date and the
// derived fue_corregido flag.
func (s *ExportService) SessionsCSV(ctx context.Context, actor models.Actor) (*CSVFile, error) {
	return s.render(ctx, actor, s.sessions, SessionsCSVFilename, emptySessionsMessage)
}

func (s *ExportService) render(ctx context.Context, actor models.Actor, source datasetSource, filename, emptyMessage string) (*CSVFile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	data, err := source.ExportDataset(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load export data")
	}

	file := &CSVFile{Filename: filename, Rows: data.Len()}
	if data.Len() == 0 {
		file.Content = s.csv.Message(emptyMessage)
	} else {
		file.Content, err = s.csv.Render(data)
		if err != nil {
			return nil, internalError(err, "failed to render csv")
		}
	}

	s.recordExport(ctx, actor, filename, file.Rows)
	return file, nil
}

func (s *ExportService) recordExport(ctx context.Context, actor models.Actor, filename string, rows int) {
	s.logger.Info("csv export generated",
		zap.String("file", filename),
		zap.Int("rows", rows),
		zap.String("by", actor.Username))
	if s.audit == nil {
		return
	}
	values, _ := json.Marshal(map[string]interface{}{"file": filename, "rows": rows})
	resourceID := filename
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     optionalString(actor.UserID),
		Action:     models.AuditActionExport,
		Resource:   models.AuditResourceExport,
		ResourceID: &resourceID,
		NewValues:  values,
		IPAddress:  actor.IP,
		UserAgent:  actor.Agent,
	}); err != nil {
		s.logger.Warn("failed to record export audit log", zap.Error(err))
	}
}
