package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

func TestContainsNormalisesAccents(t *testing.T) {
	decomposed := norm.NFD.String(DerivacionPendiente)
	require.NotEqual(t, DerivacionPendiente, decomposed)

	assert.True(t, Contains(EstadoDerivacion, decomposed))
	assert.True(t, Contains(EstadoDerivacion, "  "+DerivacionPendiente+" "))
	assert.False(t, Contains(EstadoDerivacion, "aún no gestiona derivación"))
	assert.False(t, Contains(Name("desconocido"), "x"))
}

func TestCanonical(t *testing.T) {
	got, ok := Canonical(EstadoPrograma, norm.NFD.String(EstadoDeserto)+" ")
	require.True(t, ok)
	assert.Equal(t, EstadoDeserto, got)
}

func TestValuesReturnsCopy(t *testing.T) {
	values := Values(TentativaIdeacion)
	values[0] = "mutated"
	assert.Equal(t, MotivoIdeacion, Values(TentativaIdeacion)[0])
	assert.Nil(t, Values(Name("nope")))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "alta del programa", Fold("  ALTA DEL PROGRAMA "))
}

func TestAllCoversNames(t *testing.T) {
	all := All()
	assert.Len(t, all, len(Names()))
	assert.Contains(t, all[EstadoPrograma], EstadoArchivado)
}

type sample struct {
	Estado string `validate:"omitempty,catalog=estado_programa"`
	Motivo string `validate:"required,catalog=tentativa_ideacion"`
}

func TestValidatorTag(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(sample{Motivo: MotivoTentativa}))
	assert.NoError(t, v.Struct(sample{Estado: EstadoActivo, Motivo: MotivoIdeacion}))
	assert.Error(t, v.Struct(sample{Estado: "Inventado", Motivo: MotivoIdeacion}))
	assert.Error(t, v.Struct(sample{}))
}

type dated struct {
	Fecha *models.Date `json:"fecha" validate:"required"`
}

func TestValidatorRejectsZeroDate(t *testing.T) {
	v := NewValidator()

	var payload dated
	require.NoError(t, json.Unmarshal([]byte(`{"fecha":""}`), &payload))
	require.NotNil(t, payload.Fecha)

	err := v.Struct(payload)
	require.Error(t, err)
	var fieldErrs validator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, "fecha", fieldErrs[0].Field())
	assert.Equal(t, "required", fieldErrs[0].Tag())

	assert.Error(t, v.Struct(dated{}))

	d, err := models.ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.NoError(t, v.Struct(dated{Fecha: &d}))
}
