package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// DashboardRepository runs the aggregate queries behind the statistics page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountByProgramStatus tallies students per program status.
func (r *DashboardRepository) CountByProgramStatus(ctx context.Context) ([]models.LabelCount, error) {
	const query = `SELECT estado_en_programa AS label, COUNT(*) AS total FROM estudiantes
GROUP BY estado_en_programa ORDER BY total DESC, label ASC`
	var rows []models.LabelCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count by program status: %w", err)
	}
	return rows, nil
}

// TopCareers returns the most represented programs.
func (r *DashboardRepository) TopCareers(ctx context.Context, limit int) ([]models.LabelCount, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT carrera_programa AS label, COUNT(*) AS total FROM estudiantes
GROUP BY carrera_programa ORDER BY total DESC, label ASC LIMIT $1`
	var rows []models.LabelCount
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("top careers: %w", err)
	}
	return rows, nil
}

// SessionsByMonth counts sessions per YYYY-MM, skipping sessions that a later one corrects.
func (r *DashboardRepository) SessionsByMonth(ctx context.Context) ([]models.LabelCount, error) {
	const query = `SELECT TO_CHAR(s.fecha_sesion, 'YYYY-MM') AS label, COUNT(s.id_seguimiento) AS total
FROM seguimientos s
WHERE NOT EXISTS (SELECT 1 FROM seguimientos s2 WHERE s2.corrige_id_seguimiento = s.id_seguimiento)
GROUP BY label ORDER BY label ASC`
	var rows []models.LabelCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sessions by month: %w", err)
	}
	return rows, nil
}

// IntakeReasons counts ideation and attempt intakes per entry year.
func (r *DashboardRepository) IntakeReasons(ctx context.Context) ([]models.IntakeReasonRow, error) {
	const query = `SELECT CAST(EXTRACT(YEAR FROM fecha_ingreso_programa) AS INT) AS anio, tentativa_ideacion AS motivo, COUNT(*) AS total
FROM estudiantes
WHERE tentativa_ideacion IN ($1, $2) AND fecha_ingreso_programa IS NOT NULL
GROUP BY anio, motivo ORDER BY anio ASC`
	var rows []models.IntakeReasonRow
	if err := r.db.SelectContext(ctx, &rows, query, catalog.MotivoIdeacion, catalog.MotivoTentativa); err != nil {
		return nil, fmt.Errorf("intake reasons: %w", err)
	}
	return rows, nil
}
