package casework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

func TestDiffStudentReportsChangedFieldsInOrder(t *testing.T) {
	birth := day(t, "2001-06-15")
	before := models.Student{RUT: "1-9", Nombre: "Ana", Celular: "", EstadoEnPrograma: "Activo"}
	after := before
	after.Nombre = "Anita"
	after.Celular = "+56911111111"
	after.FechaNacimiento = &birth

	changes := DiffStudent(before, after)
	require.Len(t, changes, 3)
	assert.Equal(t, "nombre", changes[0].Column)
	assert.Equal(t, "fecha_nacimiento", changes[1].Column)
	assert.Equal(t, "celular", changes[2].Column)

	assert.Equal(t,
		"Cambió Nombre de 'Ana' a 'Anita'. | Cambió Fecha de Nacimiento de 'N/A' a '2001-06-15'. | Cambió Celular de 'N/A' a '+56911111111'.",
		FormatChanges(changes))
}

func TestDiffStudentNoChanges(t *testing.T) {
	s := models.Student{RUT: "1-9", Nombre: "Ana"}
	assert.Empty(t, DiffStudent(s, s))
	assert.Equal(t, "", FormatChanges(nil))
}
