package casework

import (
	"errors"
	"fmt"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

// Correction validation failures.
var (
	ErrCorrectionTargetMissing = errors.New("a correction must reference the session it corrects")
	ErrCorrectionTargetInvalid = errors.New("only an earlier original session of the same student can be corrected")
)

// MarkCorrected sets FueCorregido on every session of the slice, in place. A session is
// superseded when another session points at it, or when it is a correction and a later
// correction (greater id) targets the same original.
func MarkCorrected(sessions []models.Session) {
	referenced := make(map[int64]struct{}, len(sessions))
	latestCorrection := make(map[int64]int64, len(sessions))
	for _, s := range sessions {
		if s.CorrigeIDSeguimiento == nil {
			continue
		}
		target := *s.CorrigeIDSeguimiento
		referenced[target] = struct{}{}
		if s.EsCorreccion && s.ID > latestCorrection[target] {
			latestCorrection[target] = s.ID
		}
	}

	for i := range sessions {
		s := &sessions[i]
		_, direct := referenced[s.ID]
		superseded := false
		if s.EsCorreccion && s.CorrigeIDSeguimiento != nil {
			superseded = latestCorrection[*s.CorrigeIDSeguimiento] > s.ID
		}
		s.FueCorregido = direct || superseded
	}
}

// CurrentVersion resolves the effective record for an original session: the correction
// with the highest id among those targeting it, or the original itself.
func CurrentVersion(targetID int64, sessions []models.Session) (models.Session, bool) {
	var (
		current models.Session
		found   bool
	)
	for _, s := range sessions {
		if s.ID == targetID && !found {
			current, found = s, true
		}
	}
	if !found {
		return models.Session{}, false
	}
	for _, s := range sessions {
		if s.EsCorreccion && s.CorrigeIDSeguimiento != nil && *s.CorrigeIDSeguimiento == targetID && s.ID > current.ID {
			current = s
		}
	}
	return current, true
}

// CorrectableSessions lists the student's original (non-correction) sessions, most recent first.
func CorrectableSessions(rut string, sessions []models.Session) []models.SessionOption {
	options := make([]models.SessionOption, 0, len(sessions))
	for _, s := range SortRecentFirst(sessions) {
		if s.RUTEstudiante != rut || s.EsCorreccion {
			continue
		}
		options = append(options, models.SessionOption{
			ID:          s.ID,
			FechaSesion: s.FechaSesion,
			Label:       OptionLabel(s.ID, s.FechaSesion),
		})
	}
	return options
}

// OptionLabel renders a picker label such as "Sesión del 2024-03-01 (ID: 12)".
func OptionLabel(id int64, fecha models.Date) string {
	return fmt.Sprintf("Sesión del %s (ID: %d)", fecha.String(), id)
}

// ValidateCorrectionTarget checks the write contract of a correction against the
// candidate list offered for the student.
func ValidateCorrectionTarget(esCorreccion bool, target *int64, candidates []models.SessionOption) error {
	if !esCorreccion {
		return nil
	}
	if target == nil {
		return ErrCorrectionTargetMissing
	}
	for _, c := range candidates {
		if c.ID == *target {
			return nil
		}
	}
	return ErrCorrectionTargetInvalid
}
