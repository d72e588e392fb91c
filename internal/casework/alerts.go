package casework

import (
	"sort"
	"strings"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// DefaultAlertThresholdDays is the follow-up gap that triggers an alert.
const DefaultAlertThresholdDays = 30

// IsActiveStatus matches "Activo" and "Activo (Reingreso)".
func IsActiveStatus(estado string) bool {
	return strings.HasPrefix(strings.TrimSpace(estado), "Activo")
}

// ComputeAlerts keeps active students whose last session is more than threshold days
// before today, or who never had one. Results are ordered by gap, largest first, with
// never-seen students last.
func ComputeAlerts(rows []models.StudentLastSession, today models.Date, threshold int) []models.FollowUpAlert {
	if threshold <= 0 {
		threshold = DefaultAlertThresholdDays
	}
	alerts := make([]models.FollowUpAlert, 0)
	for _, row := range rows {
		if !IsActiveStatus(row.EstadoEnPrograma) {
			continue
		}
		if row.UltimaSesion == nil || row.UltimaSesion.IsZero() {
			alerts = append(alerts, models.FollowUpAlert{StudentLastSession: row})
			continue
		}
		days := row.UltimaSesion.DaysUntil(today)
		if days > threshold {
			d := days
			alerts = append(alerts, models.FollowUpAlert{StudentLastSession: row, DiasSinSeguimiento: &d})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i].DiasSinSeguimiento, alerts[j].DiasSinSeguimiento
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return alerts
}

// AgeOn returns the age in whole years at the given day, or nil without a birth date.
func AgeOn(birth *models.Date, today models.Date) *int {
	if birth == nil || birth.IsZero() {
		return nil
	}
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return &age
}
