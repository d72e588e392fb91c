package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

func TestAttentionPeriodRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttentionPeriodRepository(db)

	entry := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "rut_estudiante", "fecha_ingreso", "motivo_ingreso", "estado_periodo", "fecha_alta", "carrera_periodo", "facultad_periodo", "estado_academico_periodo"}).
		AddRow(1, "1-9", entry, "Ideación", "Alta del programa", entry.AddDate(0, 6, 0), "Derecho", "Facultad de Humanidades", "Regular")
	mock.ExpectQuery(regexp.QuoteMeta("FROM periodos_atencion WHERE rut_estudiante = $1 ORDER BY fecha_ingreso, id")).
		WithArgs("1-9").
		WillReturnRows(rows)

	periods, err := repo.ListByStudent(context.Background(), "1-9")
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "2023-09-01", models.FormatDate(periods[0].FechaAlta))
}

func TestAttentionPeriodRepositoryRegisterReentry(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttentionPeriodRepository(db)

	today := models.NewDate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
	closed := &models.AttentionPeriod{ID: 1, EstadoPeriodo: "Alta del programa", FechaAlta: models.DatePtr(today)}
	opened := &models.AttentionPeriod{RUTEstudiante: "1-9", FechaIngreso: today, MotivoIngreso: "Tentativa", EstadoPeriodo: "Activo (Reingreso)"}
	student := &models.Student{RUT: "1-9", EstadoEnPrograma: "Activo (Reingreso)", FechaIngresoPrograma: models.DatePtr(today), TentativaIdeacion: "Tentativa"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE periodos_atencion SET estado_periodo = $2, fecha_alta = $3 WHERE id = $1")).
		WithArgs(int64(1), "Alta del programa", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO periodos_atencion").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE estudiantes SET estado_en_programa = $2")).
		WithArgs("1-9", "Activo (Reingreso)", sqlmock.AnyArg(), "Tentativa").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.RegisterReentry(context.Background(), student, closed, opened))
	assert.Equal(t, int64(2), opened.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
