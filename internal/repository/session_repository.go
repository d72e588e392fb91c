package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/casework"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
)

const insertSessionQuery = `INSERT INTO seguimientos (rut_estudiante, trabajadora_social_sesion, psicologo_sesion, fecha_sesion,
estado_derivacion_cesfam_actual, tipo_intervencion, resultado_cita, confirmacion_gestion_hora_cesfam,
fechas_sesiones_cesfam, bitacora_sesion, cambio_estado_programa_a, cambio_estado_academico_a,
creado_por_usuario, alta_mejora_animo, alta_disminucion_riesgo, alta_redes_apoyo,
alta_adherencia_tratamiento, alta_no_registrado, extension_programa_otorgada, es_correccion,
corrige_id_seguimiento)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING id_seguimiento`

const applyTransitionQuery = `UPDATE estudiantes SET
estado_en_programa = COALESCE($2, estado_en_programa),
estado_academico = COALESCE($3, estado_academico),
beneficio_arancel = COALESCE($4, beneficio_arancel),
estado_derivacion_maestro = COALESCE($5, estado_derivacion_maestro)
WHERE rut = $1`

// exportSessionsQuery flags superseded rows with the same rule the detail view applies.
const exportSessionsQuery = `SELECT s.id_seguimiento, s.rut_estudiante, s.trabajadora_social_sesion, s.psicologo_sesion,
s.fecha_sesion, s.estado_derivacion_cesfam_actual, s.tipo_intervencion, s.resultado_cita,
s.confirmacion_gestion_hora_cesfam, s.fechas_sesiones_cesfam, s.bitacora_sesion, s.cambio_estado_programa_a,
s.cambio_estado_academico_a, s.creado_por_usuario, s.alta_mejora_animo, s.alta_disminucion_riesgo,
s.alta_redes_apoyo, s.alta_adherencia_tratamiento, s.alta_no_registrado, s.extension_programa_otorgada,
s.es_correccion, s.corrige_id_seguimiento, e.fecha_ingreso_programa,
(EXISTS (SELECT 1 FROM seguimientos s2 WHERE s2.corrige_id_seguimiento = s.id_seguimiento)
 OR (s.es_correccion AND EXISTS (
   SELECT 1 FROM seguimientos s2 WHERE s2.es_correccion
   AND s2.corrige_id_seguimiento = s.corrige_id_seguimiento AND s2.id_seguimiento > s.id_seguimiento))) AS fue_corregido
FROM seguimientos s
INNER JOIN estudiantes e ON s.rut_estudiante = e.rut
ORDER BY s.rut_estudiante, s.fecha_sesion, s.id_seguimiento`

// SessionRepository manages follow-up sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID returns a session. sql.ErrNoRows is returned unwrapped.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM seguimientos WHERE id_seguimiento = $1"
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// ListByStudent returns every session of a student, most recent first.
func (r *SessionRepository) ListByStudent(ctx context.Context, rut string) ([]models.Session, error) {
	query := "SELECT " + sessionColumns + " FROM seguimientos WHERE rut_estudiante = $1 ORDER BY fecha_sesion DESC, id_seguimiento DESC"
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, rut); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CreateWithTransition inserts the session and applies the student status changes it
// carries in the same transaction.
func (r *SessionRepository) CreateWithTransition(ctx context.Context, session *models.Session, update casework.StudentUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowxContext(ctx, insertSessionQuery,
		session.RUTEstudiante, session.TrabajadoraSocialSesion, session.PsicologoSesion, session.FechaSesion,
		session.EstadoDerivacionCESFAMActual, session.TipoIntervencion, session.ResultadoCita,
		session.ConfirmacionGestionHoraCESFAM, session.FechasSesionesCESFAM, session.BitacoraSesion,
		session.CambioEstadoProgramaA, session.CambioEstadoAcademicoA, session.CreadoPorUsuario,
		session.AltaMejoraAnimo, session.AltaDisminucionRiesgo, session.AltaRedesApoyo,
		session.AltaAdherenciaTratamiento, session.AltaNoRegistrado, session.ExtensionProgramaOtorgada,
		session.EsCorreccion, session.CorrigeIDSeguimiento)
	if err := row.Scan(&session.ID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if err := applyTransition(ctx, tx, session.RUTEstudiante, update); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create session tx: %w", err)
	}
	return nil
}

// UpdateWithPromotion rewrites the editable session columns and promotes the observed
// derivation status to the student. Correction linkage is never touched.
func (r *SessionRepository) UpdateWithPromotion(ctx context.Context, session *models.Session, update casework.StudentUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update session tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := applyTransition(ctx, tx, session.RUTEstudiante, update); err != nil {
		return err
	}
	const query = `UPDATE seguimientos SET fecha_sesion = $2, trabajadora_social_sesion = $3, psicologo_sesion = $4,
tipo_intervencion = $5, resultado_cita = $6, estado_derivacion_cesfam_actual = $7,
confirmacion_gestion_hora_cesfam = $8, fechas_sesiones_cesfam = $9, bitacora_sesion = $10
WHERE id_seguimiento = $1`
	res, err := tx.ExecContext(ctx, query, session.ID, session.FechaSesion, session.TrabajadoraSocialSesion,
		session.PsicologoSesion, session.TipoIntervencion, session.ResultadoCita, session.EstadoDerivacionCESFAMActual,
		session.ConfirmacionGestionHoraCESFAM, session.FechasSesionesCESFAM, session.BitacoraSesion)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update session tx: %w", err)
	}
	return nil
}

// Delete removes a session. Corrections pointing at it keep existing with a cleared target.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM seguimientos WHERE id_seguimiento = $1", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExportDataset dumps every session with the student's entry date and the corrected flag.
func (r *SessionRepository) ExportDataset(ctx context.Context) (export.Dataset, error) {
	rows, err := r.db.QueryxContext(ctx, exportSessionsQuery)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("export sessions: %w", err)
	}
	defer rows.Close()
	return datasetFromRows(rows)
}

func applyTransition(ctx context.Context, exec sqlx.ExtContext, rut string, update casework.StudentUpdate) error {
	if update.Empty() {
		return nil
	}
	if _, err := exec.ExecContext(ctx, applyTransitionQuery, rut, update.EstadoEnPrograma, update.EstadoAcademico,
		update.BeneficioArancel, update.EstadoDerivacionMaestro); err != nil {
		return fmt.Errorf("apply student transition: %w", err)
	}
	return nil
}
