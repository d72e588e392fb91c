// Package casework holds the pure case-management rules: status transitions driven by
// follow-up sessions, the correction chain, student-edit diffs and follow-up alerts.
// Nothing here performs I/O.
package casework

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// Transition carries the optional status changes requested by a session submission.
// An empty (or blank) field means "keep the current value".
type Transition struct {
	NuevoEstadoPrograma          string
	NuevoEstadoAcademico         string
	BeneficioArancel             string
	EstadoDerivacionCESFAMActual string
}

// StudentUpdate lists the student columns a transition overwrites; nil means unchanged.
type StudentUpdate struct {
	EstadoEnPrograma        *string
	EstadoAcademico         *string
	BeneficioArancel        *string
	EstadoDerivacionMaestro *string
}

// Empty reports whether no column changes.
func (u StudentUpdate) Empty() bool {
	return u.EstadoEnPrograma == nil && u.EstadoAcademico == nil &&
		u.BeneficioArancel == nil && u.EstadoDerivacionMaestro == nil
}

// ApplyTo writes the update onto s.
func (u StudentUpdate) ApplyTo(s *models.Student) {
	if u.EstadoEnPrograma != nil {
		s.EstadoEnPrograma = *u.EstadoEnPrograma
	}
	if u.EstadoAcademico != nil {
		s.EstadoAcademico = *u.EstadoAcademico
	}
	if u.BeneficioArancel != nil {
		s.BeneficioArancel = *u.BeneficioArancel
	}
	if u.EstadoDerivacionMaestro != nil {
		s.EstadoDerivacionMaestro = *u.EstadoDerivacionMaestro
	}
}

// Apply computes the student columns a session submission changes. The four updates are
// independent; the derivation observed in the session is promoted to the master status.
func Apply(t Transition) StudentUpdate {
	return StudentUpdate{
		EstadoEnPrograma:        present(t.NuevoEstadoPrograma),
		EstadoAcademico:         present(t.NuevoEstadoAcademico),
		BeneficioArancel:        present(t.BeneficioArancel),
		EstadoDerivacionMaestro: present(t.EstadoDerivacionCESFAMActual),
	}
}

func present(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

var terminalDerivation = map[string]struct{}{
	catalog.DerivacionConcretada: {},
	catalog.DerivacionPrivada:    {},
	catalog.DerivacionRehusa:     {},
}

// DerivationSectionVisible reports whether the CESFAM derivation inputs are offered,
// which is the case until the master derivation status reaches a terminal value.
func DerivationSectionVisible(estadoDerivacionMaestro string) bool {
	_, terminal := terminalDerivation[catalog.Normalize(estadoDerivacionMaestro)]
	return !terminal
}

// Reminder texts shown on the session form.
const (
	reminderDerivacion = "Recordatorio: El estado de la derivación incial CESFAM en el seguimiento anterior es: '%s'."
	reminderControles  = "Recordatorio: El estado del seguimiento de controles en Red de Salud anterior es: '%s'."
)

// DerivationReminder inspects only the most recent session and returns a reminder,
// or an empty string when none applies.
func DerivationReminder(latest *models.Session) string {
	if latest == nil {
		return ""
	}
	if catalog.Normalize(latest.EstadoDerivacionCESFAMActual) == catalog.DerivacionPendiente {
		return fmt.Sprintf(reminderDerivacion, latest.EstadoDerivacionCESFAMActual)
	}
	if catalog.Normalize(latest.ConfirmacionGestionHoraCESFAM) == catalog.ControlesSinHora {
		return fmt.Sprintf(reminderControles, latest.ConfirmacionGestionHoraCESFAM)
	}
	return ""
}

// IsDischargeStatus matches "Alta del programa" ignoring case and surrounding whitespace.
func IsDischargeStatus(estado string) bool {
	return catalog.Fold(estado) == catalog.Fold(catalog.EstadoAlta)
}

// DischargeSession returns the most recent session with a discharge criterion set, only
// for students currently discharged. It returns nil otherwise.
func DischargeSession(student models.Student, sessions []models.Session) *models.Session {
	if !IsDischargeStatus(student.EstadoEnPrograma) {
		return nil
	}
	for _, s := range SortRecentFirst(sessions) {
		if s.DischargeCriteria() {
			found := s
			return &found
		}
	}
	return nil
}

// LatestSession returns the session with the greatest (date, id), or nil.
func LatestSession(sessions []models.Session) *models.Session {
	if len(sessions) == 0 {
		return nil
	}
	latest := SortRecentFirst(sessions)[0]
	return &latest
}

// SortRecentFirst returns a copy ordered by session date then id, both descending.
func SortRecentFirst(sessions []models.Session) []models.Session {
	out := make([]models.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FechaSesion.Equal(out[j].FechaSesion.Time) {
			return out[i].FechaSesion.After(out[j].FechaSesion.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// IsAssigned reports whether fullName is the student's social worker or psychologist.
// The match is exact and case-sensitive; an empty name never matches.
func IsAssigned(student models.Student, fullName string) bool {
	if fullName == "" {
		return false
	}
	return student.TrabajadoraSocialAsignada == fullName || student.PsicologoAsignado == fullName
}

// LastExtension returns the latest program extension granted in any session, or nil.
func LastExtension(sessions []models.Session) *models.Date {
	var last *models.Date
	for _, s := range sessions {
		ext := s.ExtensionProgramaOtorgada
		if ext == nil || ext.IsZero() {
			continue
		}
		if last == nil || ext.After(last.Time) {
			d := *ext
			last = &d
		}
	}
	return last
}
