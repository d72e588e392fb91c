package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

const periodColumns = `id, rut_estudiante, fecha_ingreso, motivo_ingreso, estado_periodo, fecha_alta,
carrera_periodo, facultad_periodo, estado_academico_periodo`

// AttentionPeriodRepository persists enrolment episodes.
type AttentionPeriodRepository struct {
	db *sqlx.DB
}

// NewAttentionPeriodRepository constructs the repository.
func NewAttentionPeriodRepository(db *sqlx.DB) *AttentionPeriodRepository {
	return &AttentionPeriodRepository{db: db}
}

// ListByStudent returns the student's periods ordered by entry date.
func (r *AttentionPeriodRepository) ListByStudent(ctx context.Context, rut string) ([]models.AttentionPeriod, error) {
	query := "SELECT " + periodColumns + " FROM periodos_atencion WHERE rut_estudiante = $1 ORDER BY fecha_ingreso, id"
	var periods []models.AttentionPeriod
	if err := r.db.SelectContext(ctx, &periods, query, rut); err != nil {
		return nil, fmt.Errorf("list attention periods: %w", err)
	}
	return periods, nil
}

// Create inserts a single period.
func (r *AttentionPeriodRepository) Create(ctx context.Context, period *models.AttentionPeriod) error {
	return insertPeriod(ctx, r.db, period)
}

// RegisterReentry closes the open period, opens the new one and moves the student back
// into the program, all in one transaction.
func (r *AttentionPeriodRepository) RegisterReentry(ctx context.Context, student *models.Student, closed *models.AttentionPeriod, opened *models.AttentionPeriod) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reentry tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if closed != nil {
		const closeQuery = `UPDATE periodos_atencion SET estado_periodo = $2, fecha_alta = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, closeQuery, closed.ID, closed.EstadoPeriodo, closed.FechaAlta); err != nil {
			return fmt.Errorf("close attention period: %w", err)
		}
	}
	if err := insertPeriod(ctx, tx, opened); err != nil {
		return err
	}
	const studentQuery = `UPDATE estudiantes SET estado_en_programa = $2, fecha_ingreso_programa = $3, tentativa_ideacion = $4 WHERE rut = $1`
	if _, err := tx.ExecContext(ctx, studentQuery, student.RUT, student.EstadoEnPrograma, student.FechaIngresoPrograma, student.TentativaIdeacion); err != nil {
		return fmt.Errorf("reopen student: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reentry tx: %w", err)
	}
	return nil
}

func insertPeriod(ctx context.Context, exec sqlx.ExtContext, period *models.AttentionPeriod) error {
	const query = `INSERT INTO periodos_atencion (rut_estudiante, fecha_ingreso, motivo_ingreso, estado_periodo, fecha_alta,
carrera_periodo, facultad_periodo, estado_academico_periodo)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	row := exec.QueryRowxContext(ctx, query, period.RUTEstudiante, period.FechaIngreso, period.MotivoIngreso,
		period.EstadoPeriodo, period.FechaAlta, period.CarreraPeriodo, period.FacultadPeriodo, period.EstadoAcademicoPeriodo)
	if err := row.Scan(&period.ID); err != nil {
		return fmt.Errorf("create attention period: %w", err)
	}
	return nil
}
