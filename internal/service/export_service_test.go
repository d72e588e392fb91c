package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/export"
)

type stubDataset struct {
	data export.Dataset
	err  error
}

func (s stubDataset) ExportDataset(context.Context) (export.Dataset, error) {
	return s.data, s.err
}

func TestExportServiceStudentsCSV(t *testing.T) {
	audit := &mockAuditRecorder{}
	students := stubDataset{data: export.Dataset{
		Headers: []string{"rut", "nombre"},
		Rows:    []map[string]string{{"rut": "1-9", "nombre": `Ana "Anita"`}},
	}}
	svc := NewExportService(students, stubDataset{}, audit, zap.NewNop())

	file, err := svc.StudentsCSV(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, "estudiantes_seguimiento.csv", file.Filename)
	assert.Equal(t, 1, file.Rows)
	assert.Equal(t, "\ufeff\"rut\",\"nombre\"\r\n\"1-9\",\"Ana \"\"Anita\"\"\"\r\n", string(file.Content))

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionExport, audit.logs[0].Action)
	assert.Equal(t, "estudiantes_seguimiento.csv", *audit.logs[0].ResourceID)
}

func TestExportServiceEmptyTables(t *testing.T) {
	empty := stubDataset{data: export.Dataset{Headers: []string{"rut"}}}
	svc := NewExportService(empty, empty, nil, nil)

	file, err := svc.StudentsCSV(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, "\ufeff\"No hay datos de estudiantes para descargar.\"\r\n", string(file.Content))

	file, err = svc.SessionsCSV(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, "seguimientos_programa.csv", file.Filename)
	assert.True(t, strings.Contains(string(file.Content), "No hay datos de seguimientos para descargar."))
}

func TestExportServiceRejects(t *testing.T) {
	svc := NewExportService(stubDataset{err: errors.New("db down")}, stubDataset{}, nil, nil)

	_, err := svc.StudentsCSV(context.Background(), intakeActor)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.StudentsCSV(context.Background(), adminActor)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
