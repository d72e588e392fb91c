package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/casework"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type mockSessionStore struct {
	sessions []models.Session
	nextID   int64
	created  *models.Session
	edited   *models.Session
	update   casework.StudentUpdate
	deleted  []int64
	err      error
}

func (m *mockSessionStore) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			copy := s
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionStore) ListByStudent(ctx context.Context, rut string) ([]models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Session
	for _, s := range m.sessions {
		if s.RUTEstudiante == rut {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionStore) CreateWithTransition(ctx context.Context, session *models.Session, update casework.StudentUpdate) error {
	m.nextID++
	session.ID = 100 + m.nextID
	copy := *session
	m.created = &copy
	m.update = update
	return nil
}

func (m *mockSessionStore) UpdateWithPromotion(ctx context.Context, session *models.Session, update casework.StudentUpdate) error {
	copy := *session
	m.edited = &copy
	m.update = update
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAuditRecorder struct {
	logs []*models.AuditLog
}

func (m *mockAuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

type sessionFixture struct {
	svc      *SessionService
	sessions *mockSessionStore
	audit    *mockAuditRecorder
	cache    *recordingInvalidator
}

func newSessionFixture(t *testing.T, student models.Student, sessions ...models.Session) sessionFixture {
	t.Helper()
	f := sessionFixture{
		sessions: &mockSessionStore{sessions: sessions},
		audit:    &mockAuditRecorder{},
		cache:    &recordingInvalidator{},
	}
	students := &mockStudentRepo{students: map[string]models.Student{student.RUT: student}}
	f.svc = NewSessionService(f.sessions, students, f.audit, f.cache, catalog.NewValidator(), zap.NewNop())
	f.svc.today = func() models.Date { return mustDate(t, "2024-07-01") }
	return f
}

func sessionOn(t *testing.T, id int64, rut, fecha string) models.Session {
	return models.Session{ID: id, RUTEstudiante: rut, FechaSesion: mustDate(t, fecha)}
}

func TestSessionServiceFormContext(t *testing.T) {
	student := assignedStudent()
	older := sessionOn(t, 1, student.RUT, "2024-05-01")
	latest := sessionOn(t, 2, student.RUT, "2024-06-01")
	latest.EstadoDerivacionCESFAMActual = catalog.DerivacionPendiente
	target := int64(1)
	correction := sessionOn(t, 3, student.RUT, "2024-05-15")
	correction.EsCorreccion = true
	correction.CorrigeIDSeguimiento = &target
	f := newSessionFixture(t, student, older, latest, correction)

	form, err := f.svc.FormContext(context.Background(), student.RUT, paulaActor)
	require.NoError(t, err)
	assert.True(t, form.SeccionDerivacionVisible)
	assert.Equal(t, "Recordatorio: El estado de la derivación incial CESFAM en el seguimiento anterior es: 'Aún no gestiona derivación'.", form.Recordatorio)
	require.Len(t, form.SesionesCorregibles, 2)
	assert.Equal(t, int64(2), form.SesionesCorregibles[0].ID)
	assert.Equal(t, int64(1), form.SesionesCorregibles[1].ID)
	assert.Equal(t, "Paula Araya", form.TrabajadoraSocial)
	assert.Equal(t, "2024-07-01", form.FechaSesion.String())
}

func TestSessionServiceFormContextHidesTerminalDerivation(t *testing.T) {
	student := assignedStudent()
	student.EstadoDerivacionMaestro = catalog.DerivacionPrivada
	f := newSessionFixture(t, student)

	form, err := f.svc.FormContext(context.Background(), student.RUT, adminActor)
	require.NoError(t, err)
	assert.False(t, form.SeccionDerivacionVisible)
	assert.Empty(t, form.Recordatorio)
}

func TestSessionServiceFormContextPermissions(t *testing.T) {
	f := newSessionFixture(t, assignedStudent())

	_, err := f.svc.FormContext(context.Background(), "12345678-9", intakeActor)
	assert.Equal(t, appErrors.ErrNotAssigned.Code, appErrors.FromError(err).Code)

	_, err = f.svc.FormContext(context.Background(), "12345678-9", otherActor)
	assert.Equal(t, appErrors.ErrNotAssigned.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceCreateAppliesTransition(t *testing.T) {
	student := assignedStudent()
	f := newSessionFixture(t, student)
	fecha := mustDate(t, "2024-06-28")

	result, err := f.svc.Create(context.Background(), student.RUT, SessionRequest{
		SessionEditRequest: SessionEditRequest{
			FechaSesion:                  &fecha,
			EstadoDerivacionCESFAMActual: catalog.DerivacionConcretada,
			BitacoraSesion:               "  Sesión de cierre  ",
		},
		NuevoEstadoPrograma: catalog.EstadoAlta,
		AltaRedesApoyo:      true,
		OtorgaExtension:     true,
	}, paulaActor)
	require.NoError(t, err)

	created := f.sessions.created
	require.NotNil(t, created)
	assert.Equal(t, "Paula Araya", created.CreadoPorUsuario)
	assert.Equal(t, "Paula Araya", created.TrabajadoraSocialSesion)
	assert.Equal(t, "Marianela Riffo", created.PsicologoSesion)
	assert.Equal(t, "Sesión de cierre", created.BitacoraSesion)
	assert.Equal(t, catalog.EstadoAlta, created.CambioEstadoProgramaA)
	assert.True(t, created.AltaRedesApoyo)
	require.NotNil(t, created.ExtensionProgramaOtorgada)
	assert.Equal(t, "2024-07-01", created.ExtensionProgramaOtorgada.String())
	assert.Nil(t, created.CorrigeIDSeguimiento)

	update := f.sessions.update
	require.NotNil(t, update.EstadoEnPrograma)
	assert.Equal(t, catalog.EstadoAlta, *update.EstadoEnPrograma)
	require.NotNil(t, update.EstadoDerivacionMaestro)
	assert.Equal(t, catalog.DerivacionConcretada, *update.EstadoDerivacionMaestro)
	assert.Nil(t, update.EstadoAcademico)

	assert.Equal(t, catalog.EstadoAlta, result.Student.EstadoEnPrograma)
	assert.Equal(t, catalog.DerivacionConcretada, result.Student.EstadoDerivacionMaestro)
	assert.Equal(t, []string{dashboardCachePattern}, f.cache.patterns)
}

func TestSessionServiceCreateKeepsStatusWhenEmpty(t *testing.T) {
	student := assignedStudent()
	f := newSessionFixture(t, student)
	fecha := mustDate(t, "2024-06-28")

	result, err := f.svc.Create(context.Background(), student.RUT, SessionRequest{
		SessionEditRequest: SessionEditRequest{FechaSesion: &fecha},
	}, adminActor)
	require.NoError(t, err)
	assert.True(t, f.sessions.update.Empty())
	assert.Equal(t, catalog.EstadoActivo, result.Student.EstadoEnPrograma)
	assert.Equal(t, "Admin General", f.sessions.created.CreadoPorUsuario)
}

func TestSessionServiceCreateCorrection(t *testing.T) {
	student := assignedStudent()
	original := sessionOn(t, 1, student.RUT, "2024-05-01")
	f := newSessionFixture(t, student, original)
	fecha := mustDate(t, "2024-05-02")
	target := int64(1)

	_, err := f.svc.Create(context.Background(), student.RUT, SessionRequest{
		SessionEditRequest:   SessionEditRequest{FechaSesion: &fecha},
		EsCorreccion:         true,
		CorrigeIDSeguimiento: &target,
	}, paulaActor)
	require.NoError(t, err)
	require.NotNil(t, f.sessions.created.CorrigeIDSeguimiento)
	assert.Equal(t, int64(1), *f.sessions.created.CorrigeIDSeguimiento)
	assert.True(t, f.sessions.created.EsCorreccion)
}

func TestSessionServiceCreateRejectsInvalidCorrection(t *testing.T) {
	student := assignedStudent()
	target := int64(1)
	correction := sessionOn(t, 2, student.RUT, "2024-05-02")
	correction.EsCorreccion = true
	correction.CorrigeIDSeguimiento = &target
	f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"), correction)
	fecha := mustDate(t, "2024-05-03")

	for _, tc := range []struct {
		name   string
		target *int64
	}{
		{"missing target", nil},
		{"targets a correction", ptrInt64(2)},
		{"unknown session", ptrInt64(99)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), student.RUT, SessionRequest{
				SessionEditRequest:   SessionEditRequest{FechaSesion: &fecha},
				EsCorreccion:         true,
				CorrigeIDSeguimiento: tc.target,
			}, adminActor)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, "invalid", appErr.Details["corrige_id_seguimiento"])
		})
	}
	assert.Nil(t, f.sessions.created)
}

func TestSessionServiceCreateValidation(t *testing.T) {
	student := assignedStudent()
	f := newSessionFixture(t, student)
	fecha := mustDate(t, "2024-06-28")

	_, err := f.svc.Create(context.Background(), student.RUT, SessionRequest{}, adminActor)
	assert.Equal(t, "required", appErrors.FromError(err).Details["fecha_sesion"])

	_, err = f.svc.Create(context.Background(), student.RUT, SessionRequest{
		SessionEditRequest:  SessionEditRequest{FechaSesion: &fecha},
		NuevoEstadoPrograma: "Inventado",
	}, adminActor)
	assert.Equal(t, "catalog=estado_programa", appErrors.FromError(err).Details["cambio_estado_programa_a"])

	_, err = f.svc.Create(context.Background(), student.RUT, SessionRequest{
		SessionEditRequest: SessionEditRequest{FechaSesion: &fecha},
	}, otherActor)
	assert.Equal(t, appErrors.ErrNotAssigned.Code, appErrors.FromError(err).Code)
	assert.Nil(t, f.sessions.created)
}

func TestSessionServiceRejectsBlankSessionDate(t *testing.T) {
	student := assignedStudent()
	f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"))

	var create SessionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"fecha_sesion":"","bitacora_sesion":"Sin fecha"}`), &create))
	require.NotNil(t, create.FechaSesion)
	_, err := f.svc.Create(context.Background(), student.RUT, create, paulaActor)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "required", appErr.Details["fecha_sesion"])
	assert.Nil(t, f.sessions.created)

	var edit SessionEditRequest
	require.NoError(t, json.Unmarshal([]byte(`{"fecha_sesion":""}`), &edit))
	_, err = f.svc.Update(context.Background(), 1, edit, paulaActor)
	require.Error(t, err)
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "required", appErr.Details["fecha_sesion"])
	assert.Nil(t, f.sessions.edited)
	assert.True(t, f.sessions.update.Empty())
}

func TestSessionServiceGetMarksCorrected(t *testing.T) {
	student := assignedStudent()
	target := int64(1)
	correction := sessionOn(t, 2, student.RUT, "2024-05-02")
	correction.EsCorreccion = true
	correction.CorrigeIDSeguimiento = &target
	f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"), correction)

	view, err := f.svc.Get(context.Background(), 1, paulaActor)
	require.NoError(t, err)
	assert.True(t, view.Session.FueCorregido)
	assert.Equal(t, student.RUT, view.Form.RUT)

	view, err = f.svc.Get(context.Background(), 2, paulaActor)
	require.NoError(t, err)
	assert.False(t, view.Session.FueCorregido)

	_, err = f.svc.Get(context.Background(), 42, paulaActor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceGetHidesDerivationForTerminalStatus(t *testing.T) {
	for _, estado := range []string{catalog.DerivacionPrivada, catalog.DerivacionRehusa} {
		t.Run(estado, func(t *testing.T) {
			student := assignedStudent()
			student.EstadoDerivacionMaestro = estado
			f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"))

			view, err := f.svc.Get(context.Background(), 1, paulaActor)
			require.NoError(t, err)
			assert.False(t, view.Form.SeccionDerivacionVisible)
		})
	}

	f := newSessionFixture(t, assignedStudent(), sessionOn(t, 1, "12345678-9", "2024-05-01"))
	view, err := f.svc.Get(context.Background(), 1, paulaActor)
	require.NoError(t, err)
	assert.True(t, view.Form.SeccionDerivacionVisible)
}

func TestSessionServiceUpdatePromotesDerivation(t *testing.T) {
	student := assignedStudent()
	target := int64(1)
	existing := sessionOn(t, 2, student.RUT, "2024-05-02")
	existing.EsCorreccion = true
	existing.CorrigeIDSeguimiento = &target
	existing.AltaMejoraAnimo = true
	f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"), existing)
	fecha := mustDate(t, "2024-05-03")

	result, err := f.svc.Update(context.Background(), 2, SessionEditRequest{
		FechaSesion:                  &fecha,
		EstadoDerivacionCESFAMActual: catalog.DerivacionRehusa,
		BitacoraSesion:               "Actualizada",
	}, paulaActor)
	require.NoError(t, err)

	edited := f.sessions.edited
	require.NotNil(t, edited)
	assert.Equal(t, "2024-05-03", edited.FechaSesion.String())
	assert.Equal(t, "Actualizada", edited.BitacoraSesion)
	assert.True(t, edited.EsCorreccion)
	assert.Equal(t, int64(1), *edited.CorrigeIDSeguimiento)
	assert.True(t, edited.AltaMejoraAnimo)

	require.NotNil(t, f.sessions.update.EstadoDerivacionMaestro)
	assert.Nil(t, f.sessions.update.EstadoEnPrograma)
	assert.Equal(t, catalog.DerivacionRehusa, result.Student.EstadoDerivacionMaestro)
}

func TestSessionServiceUpdateWithoutDerivationKeepsMaster(t *testing.T) {
	student := assignedStudent()
	f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"))
	fecha := mustDate(t, "2024-05-03")

	result, err := f.svc.Update(context.Background(), 1, SessionEditRequest{FechaSesion: &fecha}, adminActor)
	require.NoError(t, err)
	assert.True(t, f.sessions.update.Empty())
	assert.Equal(t, catalog.DerivacionPendiente, result.Student.EstadoDerivacionMaestro)
}

func TestSessionServiceDelete(t *testing.T) {
	student := assignedStudent()
	f := newSessionFixture(t, student, sessionOn(t, 1, student.RUT, "2024-05-01"))

	err := f.svc.Delete(context.Background(), 1, paulaActor)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.sessions.deleted)

	err = f.svc.Delete(context.Background(), 99, adminActor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, f.svc.Delete(context.Background(), 1, adminActor))
	assert.Equal(t, []int64{1}, f.sessions.deleted)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionSessionDelete, f.audit.logs[0].Action)
	assert.Equal(t, "1", *f.audit.logs[0].ResourceID)
}

func ptrInt64(v int64) *int64 { return &v }
