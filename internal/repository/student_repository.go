package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
)

// TrimmedStudentColumns are the free-text columns normalised by the whitespace cleanup.
var TrimmedStudentColumns = []string{
	"genero", "sexo", "facultad", "carrera_programa", "estado_academico",
	"nacionalidad", "estado_civil", "trabajadora_social_asignada", "psicologo_asignado",
}

const insertStudentQuery = `INSERT INTO estudiantes (` + studentColumns + `) VALUES (
:rut, :nombre, :apellido_paterno, :apellido_materno, :genero, :sexo, :facultad, :fecha_nacimiento,
:nacionalidad, :estado_civil, :tiene_hijos, :carrera_programa, :estado_academico, :ocupacion_laboral,
:residencia_academica, :residencia_familiar, :celular, :trabajadora_social_asignada, :psicologo_asignado,
:fecha_ingreso_programa, :fuente_derivacion, :estado_en_programa, :fecha_derivacion_cesfam, :cesfam_derivacion,
:tentativa_ideacion, :fecha_autorizacion_investigacion, :nombre_contacto_emergencia,
:parentesco_contacto_emergencia, :telefono_contacto_emergencia, :beneficio_arancel,
:estado_derivacion_maestro, :nota_importante)`

const updateStudentQuery = `UPDATE estudiantes SET nombre = :nombre, apellido_paterno = :apellido_paterno,
apellido_materno = :apellido_materno, genero = :genero, sexo = :sexo, facultad = :facultad,
fecha_nacimiento = :fecha_nacimiento, nacionalidad = :nacionalidad, estado_civil = :estado_civil,
tiene_hijos = :tiene_hijos, carrera_programa = :carrera_programa, estado_academico = :estado_academico,
ocupacion_laboral = :ocupacion_laboral, residencia_academica = :residencia_academica,
residencia_familiar = :residencia_familiar, celular = :celular,
trabajadora_social_asignada = :trabajadora_social_asignada, psicologo_asignado = :psicologo_asignado,
fecha_ingreso_programa = :fecha_ingreso_programa, fuente_derivacion = :fuente_derivacion,
estado_en_programa = :estado_en_programa, fecha_derivacion_cesfam = :fecha_derivacion_cesfam,
cesfam_derivacion = :cesfam_derivacion, tentativa_ideacion = :tentativa_ideacion,
fecha_autorizacion_investigacion = :fecha_autorizacion_investigacion,
nombre_contacto_emergencia = :nombre_contacto_emergencia,
parentesco_contacto_emergencia = :parentesco_contacto_emergencia,
telefono_contacto_emergencia = :telefono_contacto_emergencia, beneficio_arancel = :beneficio_arancel,
estado_derivacion_maestro = :estado_derivacion_maestro, nota_importante = :nota_importante
WHERE rut = :rut`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters, ordered by surnames and name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM estudiantes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AssignedTo != nil {
		if *filter.AssignedTo == "" {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, fmt.Sprintf("(trabajadora_social_asignada = $%d OR psicologo_asignado = $%d)", len(args)+1, len(args)+1))
			args = append(args, *filter.AssignedTo)
		}
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(rut) LIKE $%d OR LOWER(nombre) LIKE $%d OR LOWER(apellido_paterno) LIKE $%d OR LOWER(apellido_materno) LIKE $%d)", n, n, n, n))
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if estado := strings.TrimSpace(filter.Estado); estado != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(estado_en_programa)) = $%d", len(args)+1))
		args = append(args, strings.ToLower(estado))
	} else if !filter.ShowArchived {
		conditions = append(conditions, fmt.Sprintf("LOWER(TRIM(estado_en_programa)) <> $%d", len(args)+1))
		args = append(args, "archivado")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY apellido_paterno, apellido_materno, nombre LIMIT %d OFFSET %d", studentColumns, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByRUT fetches a student by national id. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByRUT(ctx context.Context, rut string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM estudiantes WHERE rut = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, rut); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Exists reports whether a student with the RUT is registered.
func (r *StudentRepository) Exists(ctx context.Context, rut string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM estudiantes WHERE rut = $1 LIMIT 1", rut); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check rut: %w", err)
	}
	return true, nil
}

// CreateWithPeriod inserts the student and, when given, its initial attention period.
func (r *StudentRepository) CreateWithPeriod(ctx context.Context, student *models.Student, period *models.AttentionPeriod) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if period != nil {
		if err := insertPeriod(ctx, tx, period); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student tx: %w", err)
	}
	return nil
}

// UpdateWithHistory writes every mutable column and appends the history entry, if any,
// in one transaction.
func (r *StudentRepository) UpdateWithHistory(ctx context.Context, student *models.Student, entry *models.ChangeHistory) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx, updateStudentQuery, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	if entry != nil {
		if err := insertHistory(ctx, tx, entry); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update student tx: %w", err)
	}
	return nil
}

// LastSessions returns active students with the date of their latest session.
// A nil assignedTo means no staff restriction; an empty one matches nobody.
func (r *StudentRepository) LastSessions(ctx context.Context, assignedTo *string) ([]models.StudentLastSession, error) {
	query := `SELECT e.rut, e.nombre, e.apellido_paterno, e.apellido_materno, e.estado_en_programa,
e.trabajadora_social_asignada, e.psicologo_asignado, MAX(s.fecha_sesion) AS ultima_sesion
FROM estudiantes e LEFT JOIN seguimientos s ON s.rut_estudiante = e.rut
WHERE e.estado_en_programa LIKE 'Activo%'`
	var args []interface{}
	if assignedTo != nil {
		if *assignedTo == "" {
			query += " AND 1 = 0"
		} else {
			query += " AND (e.trabajadora_social_asignada = $1 OR e.psicologo_asignado = $1)"
			args = append(args, *assignedTo)
		}
	}
	query += " GROUP BY e.rut"

	var rows []models.StudentLastSession
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list last sessions: %w", err)
	}
	return rows, nil
}

// ActiveByYear counts active students per program entry year, most recent first.
func (r *StudentRepository) ActiveByYear(ctx context.Context) ([]models.YearCount, error) {
	const query = `SELECT CAST(EXTRACT(YEAR FROM fecha_ingreso_programa) AS INT) AS anio, COUNT(*) AS total
FROM estudiantes
WHERE estado_en_programa IN ($1, $2) AND fecha_ingreso_programa IS NOT NULL
GROUP BY anio ORDER BY anio DESC`
	var counts []models.YearCount
	if err := r.db.SelectContext(ctx, &counts, query, "Activo", "Activo (Reingreso)"); err != nil {
		return nil, fmt.Errorf("count active by year: %w", err)
	}
	return counts, nil
}

// ExportDataset dumps every student column, ordered like the index.
func (r *StudentRepository) ExportDataset(ctx context.Context) (export.Dataset, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT "+studentColumns+" FROM estudiantes ORDER BY apellido_paterno, apellido_materno, nombre")
	if err != nil {
		return export.Dataset{}, fmt.Errorf("export students: %w", err)
	}
	defer rows.Close()
	return datasetFromRows(rows)
}

// TrimTextColumns strips surrounding whitespace from the catalog-backed text columns and
// returns the number of students touched.
func (r *StudentRepository) TrimTextColumns(ctx context.Context) (int64, error) {
	sets := make([]string, len(TrimmedStudentColumns))
	diffs := make([]string, len(TrimmedStudentColumns))
	for i, col := range TrimmedStudentColumns {
		sets[i] = fmt.Sprintf("%s = TRIM(%s)", col, col)
		diffs[i] = fmt.Sprintf("%s <> TRIM(%s)", col, col)
	}
	query := fmt.Sprintf("UPDATE estudiantes SET %s WHERE %s", strings.Join(sets, ", "), strings.Join(diffs, " OR "))
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("trim student text: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("trim student text rows: %w", err)
	}
	return affected, nil
}

// ListWithoutPeriod returns students that have no attention period yet.
func (r *StudentRepository) ListWithoutPeriod(ctx context.Context) ([]models.Student, error) {
	query := "SELECT " + studentColumns + ` FROM estudiantes e
WHERE NOT EXISTS (SELECT 1 FROM periodos_atencion p WHERE p.rut_estudiante = e.rut)
ORDER BY rut`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students without period: %w", err)
	}
	return students, nil
}
