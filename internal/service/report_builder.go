package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/casework"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
)

// ErrReportStudentMissing marks a case-file job whose student no longer exists.
var ErrReportStudentMissing = errors.New("report student not found")

// caseloadHeaders are the student columns kept in the caseload listing.
var caseloadHeaders = []string{
	"rut", "apellido_paterno", "apellido_materno", "nombre", "carrera_programa",
	"estado_en_programa", "trabajadora_social_asignada", "psicologo_asignado", "fecha_ingreso_programa",
}

type summaryProvider interface {
	Summary(ctx context.Context) (*models.DashboardSummary, bool, error)
}

type periodLister interface {
	ListByStudent(ctx context.Context, rut string) ([]models.AttentionPeriod, error)
}

// ReportContent is a built report: the printable document and the table used for CSV.
type ReportContent struct {
	Document export.Document
	Table    export.Dataset
	Name     string
}

// ReportBuilderDeps groups the data sources reports read from.
type ReportBuilderDeps struct {
	Dashboard summaryProvider
	Students  studentFinder
	Sessions  studentSessionReader
	History   changeHistoryReader
	Periods   periodLister
	Caseload  datasetSource
}

// ReportBuilder assembles report content from the case-management data.
type ReportBuilder struct {
	deps ReportBuilderDeps
	now  func() time.Time
}

// NewReportBuilder constructs a ReportBuilder.
func NewReportBuilder(deps ReportBuilderDeps) *ReportBuilder {
	return &ReportBuilder{deps: deps, now: time.Now}
}

// Build produces the content for a job.
func (b *ReportBuilder) Build(ctx context.Context, job *models.ReportJob) (*ReportContent, error) {
	switch job.Type {
	case models.ReportTypeDashboard:
		return b.dashboard(ctx)
	case models.ReportTypeStudentCase:
		return b.studentCase(ctx, job.Params.RUT)
	case models.ReportTypeCaseload:
		return b.caseload(ctx)
	default:
		return nil, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (b *ReportBuilder) subtitle() string {
	return "Generado el " + b.now().Format("2006-01-02 15:04")
}

func (b *ReportBuilder) dashboard(ctx context.Context) (*ReportContent, error) {
	summary, _, err := b.deps.Dashboard.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard summary: %w", err)
	}

	sections := []struct {
		title  string
		counts []models.LabelCount
	}{
		{"Estudiantes por estado en programa", summary.ByProgramStatus},
		{"Carreras con más estudiantes", summary.TopCareers},
		{"Seguimientos por mes", summary.SessionsByMonth},
	}

	doc := export.Document{Title: "Estadísticas del programa", Subtitle: b.subtitle()}
	flat := export.Dataset{Headers: []string{"seccion", "etiqueta", "total"}}
	for _, section := range sections {
		table := export.Dataset{Headers: []string{"Etiqueta", "Total"}}
		for _, c := range section.counts {
			total := strconv.Itoa(c.Total)
			table.Rows = append(table.Rows, map[string]string{"Etiqueta": c.Label, "Total": total})
			flat.Rows = append(flat.Rows, map[string]string{"seccion": section.title, "etiqueta": c.Label, "total": total})
		}
		doc.Tables = append(doc.Tables, export.Table{Title: section.title, Data: table})
	}

	intake := export.Dataset{Headers: []string{"Año", "Ideación", "Tentativa"}}
	for _, row := range summary.IntakeByYear {
		year := strconv.Itoa(row.Year)
		intake.Rows = append(intake.Rows, map[string]string{
			"Año": year, "Ideación": strconv.Itoa(row.Ideacion), "Tentativa": strconv.Itoa(row.Tentativa),
		})
		flat.Rows = append(flat.Rows,
			map[string]string{"seccion": "Motivo de ingreso " + year, "etiqueta": "Ideación", "total": strconv.Itoa(row.Ideacion)},
			map[string]string{"seccion": "Motivo de ingreso " + year, "etiqueta": "Tentativa", "total": strconv.Itoa(row.Tentativa)},
		)
	}
	doc.Tables = append(doc.Tables, export.Table{Title: "Motivo de ingreso por año", Data: intake})

	return &ReportContent{Document: doc, Table: flat, Name: "estadisticas"}, nil
}

func (b *ReportBuilder) studentCase(ctx context.Context, rut string) (*ReportContent, error) {
	student, err := b.deps.Students.FindByRUT(ctx, rut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReportStudentMissing, rut)
		}
		return nil, fmt.Errorf("load student: %w", err)
	}
	sessions, err := b.deps.Sessions.ListByStudent(ctx, rut)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	casework.MarkCorrected(sessions)
	periods, err := b.deps.Periods.ListByStudent(ctx, rut)
	if err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}
	history, err := b.deps.History.ListForRecord(ctx, models.HistoryModelStudent, rut)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	doc := export.Document{
		Title:    "Ficha de caso: " + student.FullName(),
		Subtitle: b.subtitle(),
		Fields: []export.Field{
			{Label: "RUT", Value: student.RUT},
			{Label: "Carrera", Value: student.CarreraPrograma},
			{Label: "Estado en programa", Value: student.EstadoEnPrograma},
			{Label: "Estado académico", Value: student.EstadoAcademico},
			{Label: "Trabajadora social", Value: student.TrabajadoraSocialAsignada},
			{Label: "Psicólogo/a", Value: student.PsicologoAsignado},
			{Label: "Fecha de ingreso", Value: models.FormatDate(student.FechaIngresoPrograma)},
			{Label: "Motivo de ingreso", Value: student.TentativaIdeacion},
			{Label: "Derivación CESFAM", Value: student.EstadoDerivacionMaestro},
			{Label: "Nota importante", Value: student.NotaImportante},
		},
	}

	sessionTable := export.Dataset{Headers: []string{
		"ID", "Fecha", "Trabajadora social", "Psicólogo/a", "Intervención", "Resultado", "Derivación", "Corrección", "Corregida",
	}}
	for _, s := range casework.SortRecentFirst(sessions) {
		sessionTable.Rows = append(sessionTable.Rows, map[string]string{
			"ID":                 strconv.FormatInt(s.ID, 10),
			"Fecha":              s.FechaSesion.String(),
			"Trabajadora social": s.TrabajadoraSocialSesion,
			"Psicólogo/a":        s.PsicologoSesion,
			"Intervención":       s.TipoIntervencion,
			"Resultado":          s.ResultadoCita,
			"Derivación":         s.EstadoDerivacionCESFAMActual,
			"Corrección":         correctionLabel(s),
			"Corregida":          yesNo(s.FueCorregido),
		})
	}

	periodTable := export.Dataset{Headers: []string{"Ingreso", "Motivo", "Estado", "Alta", "Carrera"}}
	for _, p := range periods {
		periodTable.Rows = append(periodTable.Rows, map[string]string{
			"Ingreso": p.FechaIngreso.String(),
			"Motivo":  p.MotivoIngreso,
			"Estado":  p.EstadoPeriodo,
			"Alta":    models.FormatDate(p.FechaAlta),
			"Carrera": p.CarreraPeriodo,
		})
	}

	historyTable := export.Dataset{Headers: []string{"Fecha", "Usuario", "Detalles"}}
	for _, h := range history {
		historyTable.Rows = append(historyTable.Rows, map[string]string{
			"Fecha":    h.FechaCambio.Format("2006-01-02 15:04"),
			"Usuario":  h.NombreUsuario,
			"Detalles": h.Detalles,
		})
	}

	doc.Tables = []export.Table{
		{Title: "Seguimientos", Data: sessionTable},
		{Title: "Periodos de atención", Data: periodTable},
		{Title: "Historial de cambios", Data: historyTable},
	}
	return &ReportContent{Document: doc, Table: sessionTable, Name: "ficha_" + rut}, nil
}

func (b *ReportBuilder) caseload(ctx context.Context) (*ReportContent, error) {
	all, err := b.deps.Caseload.ExportDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load caseload: %w", err)
	}
	table := export.Dataset{Headers: caseloadHeaders}
	for _, row := range all.Rows {
		projected := make(map[string]string, len(caseloadHeaders))
		for _, h := range caseloadHeaders {
			projected[h] = row[h]
		}
		table.Rows = append(table.Rows, projected)
	}
	doc := export.Document{
		Title:    "Nómina de estudiantes",
		Subtitle: b.subtitle(),
		Fields:   []export.Field{{Label: "Total de estudiantes", Value: strconv.Itoa(table.Len())}},
		Tables:   []export.Table{{Data: table}},
	}
	return &ReportContent{Document: doc, Table: table, Name: "nomina"}, nil
}

func correctionLabel(s models.Session) string {
	if !s.EsCorreccion || s.CorrigeIDSeguimiento == nil {
		return ""
	}
	return "Corrige " + strconv.FormatInt(*s.CorrigeIDSeguimiento, 10)
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
