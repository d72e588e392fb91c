package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

var studentRowColumns = []string{
	"rut", "nombre", "apellido_paterno", "apellido_materno", "genero", "sexo", "facultad", "fecha_nacimiento",
	"nacionalidad", "estado_civil", "tiene_hijos", "carrera_programa", "estado_academico", "ocupacion_laboral",
	"residencia_academica", "residencia_familiar", "celular", "trabajadora_social_asignada", "psicologo_asignado",
	"fecha_ingreso_programa", "fuente_derivacion", "estado_en_programa", "fecha_derivacion_cesfam", "cesfam_derivacion",
	"tentativa_ideacion", "fecha_autorizacion_investigacion", "nombre_contacto_emergencia",
	"parentesco_contacto_emergencia", "telefono_contacto_emergencia", "beneficio_arancel",
	"estado_derivacion_maestro", "nota_importante",
}

func studentRow(rows *sqlmock.Rows, rut, nombre, estado string) *sqlmock.Rows {
	entry := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(rut, nombre, "Rojas", "Soto", "Femenino", "Femenino", "Facultad de Ciencias", nil,
		"Chilena", "Soltero/a", "No", "Derecho", "Regular", "No trabaja",
		"", "", "", "Ana Pérez", "Luis Soto",
		entry, "Espontánea", estado, nil, "",
		"Ideación", nil, "", "", "", "",
		"Aún no gestiona derivación", "")
}

func TestStudentRepositoryListHidesArchivedByDefault(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRow(sqlmock.NewRows(studentRowColumns), "11.111.111-1", "Ana", "Activo")
	mock.ExpectQuery(regexp.QuoteMeta("FROM estudiantes WHERE 1=1 AND LOWER(TRIM(estado_en_programa)) <> $1 ORDER BY apellido_paterno, apellido_materno, nombre LIMIT 20 OFFSET 0")).
		WithArgs("archivado").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM estudiantes WHERE 1=1 AND LOWER(TRIM(estado_en_programa)) <> $1")).
		WithArgs("archivado").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2024-03-04", models.FormatDate(students[0].FechaIngresoPrograma))
	assert.Nil(t, students[0].FechaNacimiento)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListScopedSearchAndStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	assigned := "Ana Pérez"
	where := "WHERE 1=1 AND (trabajadora_social_asignada = $1 OR psicologo_asignado = $1) AND (LOWER(rut) LIKE $2 OR LOWER(nombre) LIKE $2 OR LOWER(apellido_paterno) LIKE $2 OR LOWER(apellido_materno) LIKE $2) AND LOWER(TRIM(estado_en_programa)) = $3"
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY")).
		WithArgs(assigned, "%roj%", "archivado").
		WillReturnRows(sqlmock.NewRows(studentRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM estudiantes " + where)).
		WithArgs(assigned, "%roj%", "archivado").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	students, total, err := repo.List(context.Background(), models.StudentFilter{AssignedTo: &assigned, Search: " Roj ", Estado: "Archivado"})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListProfessionalWithoutName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	empty := ""
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND 1 = 0 ORDER BY")).WillReturnRows(sqlmock.NewRows(studentRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.StudentFilter{AssignedTo: &empty, ShowArchived: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO estudiantes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO periodos_atencion").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	entry := models.NewDate(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	period := &models.AttentionPeriod{RUTEstudiante: "1-9", FechaIngreso: entry, MotivoIngreso: "Ideación", EstadoPeriodo: "Activo"}
	err := repo.CreateWithPeriod(context.Background(), &models.Student{RUT: "1-9", Nombre: "Ana"}, period)
	require.NoError(t, err)
	assert.Equal(t, int64(7), period.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateRollsBackOnPeriodFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO estudiantes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO periodos_atencion").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.CreateWithPeriod(context.Background(), &models.Student{RUT: "1-9"}, &models.AttentionPeriod{RUTEstudiante: "1-9"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateWithHistory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE estudiantes SET nombre").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO historial_cambios").
		WithArgs(sqlmock.AnyArg(), "Admin", models.HistoryActionStudentEdit, models.HistoryModelStudent, "1-9", "Cambió Nombre de 'Ana' a 'Anita'.").
		WillReturnRows(sqlmock.NewRows([]string{"id_cambio"}).AddRow(3))
	mock.ExpectCommit()

	entry := &models.ChangeHistory{
		NombreUsuario:      "Admin",
		Accion:             models.HistoryActionStudentEdit,
		ModeloAfectado:     models.HistoryModelStudent,
		IDRegistroAfectado: "1-9",
		Detalles:           "Cambió Nombre de 'Ana' a 'Anita'.",
	}
	require.NoError(t, repo.UpdateWithHistory(context.Background(), &models.Student{RUT: "1-9", Nombre: "Anita"}, entry))
	assert.Equal(t, int64(3), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissingStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE estudiantes SET nombre").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateWithHistory(context.Background(), &models.Student{RUT: "nope"}, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLastSessions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	last := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"rut", "nombre", "apellido_paterno", "apellido_materno", "estado_en_programa", "trabajadora_social_asignada", "psicologo_asignado", "ultima_sesion"}).
		AddRow("1-9", "Ana", "Rojas", "Soto", "Activo", "Ana Pérez", "", last).
		AddRow("2-7", "Luis", "Díaz", "Vera", "Activo", "Ana Pérez", "", nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.estado_en_programa LIKE 'Activo%' AND (e.trabajadora_social_asignada = $1 OR e.psicologo_asignado = $1) GROUP BY e.rut")).
		WithArgs("Ana Pérez").
		WillReturnRows(rows)

	assigned := "Ana Pérez"
	result, err := repo.LastSessions(context.Background(), &assigned)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "2024-05-01", models.FormatDate(result[0].UltimaSesion))
	assert.Nil(t, result[1].UltimaSesion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryTrimTextColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE estudiantes SET genero = TRIM(genero), sexo = TRIM(sexo)")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	affected, err := repo.TrimTextColumns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), affected)
}

func TestStudentRepositoryExportDataset(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRow(sqlmock.NewRows(studentRowColumns), "1-9", "Ana", "Activo")
	rows = studentRow(rows, "2-7", "Luis", "Alta del programa")
	mock.ExpectQuery(regexp.QuoteMeta("FROM estudiantes ORDER BY apellido_paterno, apellido_materno, nombre")).WillReturnRows(rows)

	data, err := repo.ExportDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, studentRowColumns, data.Headers)
	require.Equal(t, 2, data.Len())
	assert.Equal(t, "2024-03-04", data.Rows[0]["fecha_ingreso_programa"])
	assert.Equal(t, "", data.Rows[0]["fecha_nacimiento"])
	assert.Equal(t, "Alta del programa", data.Rows[1]["estado_en_programa"])
}
