package casework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

func TestComputeAlerts(t *testing.T) {
	today := day(t, "2024-06-30")
	at := func(raw string) *models.Date { d := day(t, raw); return &d }

	rows := []models.StudentLastSession{
		{RUT: "recent", EstadoEnPrograma: "Activo", UltimaSesion: at("2024-06-20")},
		{RUT: "exactly-30", EstadoEnPrograma: "Activo", UltimaSesion: at("2024-05-31")},
		{RUT: "31", EstadoEnPrograma: "Activo (Reingreso)", UltimaSesion: at("2024-05-30")},
		{RUT: "never", EstadoEnPrograma: "Activo"},
		{RUT: "old", EstadoEnPrograma: "Activo", UltimaSesion: at("2024-01-01")},
		{RUT: "discharged", EstadoEnPrograma: "Alta del programa", UltimaSesion: at("2023-01-01")},
	}

	alerts := ComputeAlerts(rows, today, 30)
	require.Len(t, alerts, 3)
	assert.Equal(t, "old", alerts[0].RUT)
	assert.Equal(t, "31", alerts[1].RUT)
	require.NotNil(t, alerts[1].DiasSinSeguimiento)
	assert.Equal(t, 31, *alerts[1].DiasSinSeguimiento)
	assert.Equal(t, "never", alerts[2].RUT)
	assert.Nil(t, alerts[2].DiasSinSeguimiento)
}

func TestComputeAlertsDefaultsThreshold(t *testing.T) {
	today := day(t, "2024-06-30")
	last := day(t, "2024-05-01")
	alerts := ComputeAlerts([]models.StudentLastSession{{RUT: "a", EstadoEnPrograma: "Activo", UltimaSesion: &last}}, today, 0)
	assert.Len(t, alerts, 1)
}

func TestAgeOn(t *testing.T) {
	today := day(t, "2024-06-15")
	assert.Nil(t, AgeOn(nil, today))

	birthday := day(t, "2000-06-15")
	age := AgeOn(&birthday, today)
	require.NotNil(t, age)
	assert.Equal(t, 24, *age)

	tomorrow := day(t, "2000-06-16")
	assert.Equal(t, 23, *AgeOn(&tomorrow, today))
}
