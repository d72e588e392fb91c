package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/casework"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	ListByStudent(ctx context.Context, rut string) ([]models.Session, error)
	CreateWithTransition(ctx context.Context, session *models.Session, update casework.StudentUpdate) error
	UpdateWithPromotion(ctx context.Context, session *models.Session, update casework.StudentUpdate) error
	Delete(ctx context.Context, id int64) error
}

type studentFinder interface {
	FindByRUT(ctx context.Context, rut string) (*models.Student, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SessionEditRequest holds the columns a session edit may change.
type SessionEditRequest struct {
	FechaSesion                   *models.Date `json:"fecha_sesion" validate:"required"`
	TrabajadoraSocialSesion       string       `json:"trabajadora_social_sesion" validate:"omitempty,catalog=trabajadora_social"`
	PsicologoSesion               string       `json:"psicologo_sesion" validate:"omitempty,catalog=psicologo"`
	TipoIntervencion              string       `json:"tipo_intervencion" validate:"omitempty,catalog=tipo_intervencion"`
	ResultadoCita                 string       `json:"resultado_cita" validate:"omitempty,catalog=resultado_cita"`
	EstadoDerivacionCESFAMActual  string       `json:"estado_derivacion_cesfam_actual" validate:"omitempty,catalog=estado_derivacion"`
	ConfirmacionGestionHoraCESFAM string       `json:"confirmacion_gestion_hora_cesfam" validate:"omitempty,catalog=asistencia_controles_cesfam"`
	FechasSesionesCESFAM          string       `json:"fechas_sesiones_cesfam" validate:"max=500"`
	BitacoraSesion                string       `json:"bitacora_sesion" validate:"max=10000"`
}

// SessionRequest is a new follow-up submission. Empty status fields keep the student's value.
type SessionRequest struct {
	SessionEditRequest
	NuevoEstadoPrograma       string `json:"cambio_estado_programa_a" validate:"omitempty,catalog=estado_programa"`
	NuevoEstadoAcademico      string `json:"cambio_estado_academico_a" validate:"omitempty,catalog=estado_academico"`
	BeneficioArancel          string `json:"beneficio_arancel" validate:"omitempty,catalog=beneficio_arancel"`
	AltaMejoraAnimo           bool   `json:"alta_mejora_animo"`
	AltaDisminucionRiesgo     bool   `json:"alta_disminucion_riesgo"`
	AltaRedesApoyo            bool   `json:"alta_redes_apoyo"`
	AltaAdherenciaTratamiento bool   `json:"alta_adherencia_tratamiento"`
	AltaNoRegistrado          bool   `json:"alta_no_registrado"`
	OtorgaExtension           bool   `json:"otorga_extension"`
	EsCorreccion              bool   `json:"es_correccion"`
	CorrigeIDSeguimiento      *int64 `json:"corrige_id_seguimiento"`
}

// SessionFormContext is what a client needs to render the session form for a student.
type SessionFormContext struct {
	RUT                      string                 `json:"rut"`
	NombreEstudiante         string                 `json:"nombre_estudiante"`
	EstadoEnPrograma         string                 `json:"estado_en_programa"`
	EstadoDerivacionMaestro  string                 `json:"estado_derivacion_maestro"`
	SeccionDerivacionVisible bool                   `json:"seccion_derivacion_visible"`
	Recordatorio             string                 `json:"recordatorio,omitempty"`
	SesionesCorregibles      []models.SessionOption `json:"sesiones_corregibles"`
	TrabajadoraSocial        string                 `json:"trabajadora_social_sesion"`
	Psicologo                string                 `json:"psicologo_sesion"`
	FechaSesion              models.Date            `json:"fecha_sesion"`
}

// SessionView is a session together with the edit form context.
type SessionView struct {
	Session models.Session     `json:"seguimiento"`
	Form    SessionFormContext `json:"formulario"`
}

// SessionResult is the outcome of a session write.
type SessionResult struct {
	Session models.Session `json:"seguimiento"`
	Student models.Student `json:"estudiante"`
}

// SessionService implements the follow-up workflow and drives the status state machine.
type SessionService struct {
	repo      sessionRepository
	students  studentFinder
	audit     auditRecorder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	today     func() models.Date
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, students studentFinder, audit auditRecorder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = catalog.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:      repo,
		students:  students,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger,
		today:     func() models.Date { return models.Today(time.Local) },
	}
}

// FormContext returns the create-form context: derivation visibility, the reminder
// drawn from the latest session, the correctable sessions and the staff defaults.
func (s *SessionService) FormContext(ctx context.Context, rut string, actor models.Actor) (*SessionFormContext, error) {
	student, err := s.loadStudent(ctx, rut)
	if err != nil {
		return nil, err
	}
	if !canWriteSessions(actor, *student) {
		return nil, notAssigned()
	}
	sessions, err := s.repo.ListByStudent(ctx, student.RUT)
	if err != nil {
		return nil, internalError(err, "failed to load sessions")
	}
	form := s.formContext(*student, sessions)
	return &form, nil
}

// Create stores a new session and applies the status changes it carries to the student.
func (s *SessionService) Create(ctx context.Context, rut string, req SessionRequest, actor models.Actor) (*SessionResult, error) {
	student, err := s.loadStudent(ctx, rut)
	if err != nil {
		return nil, err
	}
	if !canWriteSessions(actor, *student) {
		return nil, notAssigned()
	}

	req = normalizeSessionRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}

	sessions, err := s.repo.ListByStudent(ctx, student.RUT)
	if err != nil {
		return nil, internalError(err, "failed to load sessions")
	}
	candidates := casework.CorrectableSessions(student.RUT, sessions)
	if err := casework.ValidateCorrectionTarget(req.EsCorreccion, req.CorrigeIDSeguimiento, candidates); err != nil {
		return nil, appErrors.WithDetails(appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()),
			map[string]string{"corrige_id_seguimiento": "invalid"})
	}

	session := models.Session{
		RUTEstudiante:                 student.RUT,
		FechaSesion:                   *req.FechaSesion,
		TrabajadoraSocialSesion:       firstNonEmpty(req.TrabajadoraSocialSesion, student.TrabajadoraSocialAsignada),
		PsicologoSesion:               firstNonEmpty(req.PsicologoSesion, student.PsicologoAsignado),
		EstadoDerivacionCESFAMActual:  req.EstadoDerivacionCESFAMActual,
		TipoIntervencion:              req.TipoIntervencion,
		ResultadoCita:                 req.ResultadoCita,
		ConfirmacionGestionHoraCESFAM: req.ConfirmacionGestionHoraCESFAM,
		FechasSesionesCESFAM:          req.FechasSesionesCESFAM,
		BitacoraSesion:                req.BitacoraSesion,
		CambioEstadoProgramaA:         req.NuevoEstadoPrograma,
		CambioEstadoAcademicoA:        req.NuevoEstadoAcademico,
		CreadoPorUsuario:              actor.DisplayName(),
		AltaMejoraAnimo:               req.AltaMejoraAnimo,
		AltaDisminucionRiesgo:         req.AltaDisminucionRiesgo,
		AltaRedesApoyo:                req.AltaRedesApoyo,
		AltaAdherenciaTratamiento:     req.AltaAdherenciaTratamiento,
		AltaNoRegistrado:              req.AltaNoRegistrado,
		EsCorreccion:                  req.EsCorreccion,
	}
	if req.OtorgaExtension {
		session.ExtensionProgramaOtorgada = models.DatePtr(s.today())
	}
	if req.EsCorreccion {
		session.CorrigeIDSeguimiento = req.CorrigeIDSeguimiento
	}

	update := casework.Apply(casework.Transition{
		NuevoEstadoPrograma:          req.NuevoEstadoPrograma,
		NuevoEstadoAcademico:         req.NuevoEstadoAcademico,
		BeneficioArancel:             req.BeneficioArancel,
		EstadoDerivacionCESFAMActual: req.EstadoDerivacionCESFAMActual,
	})

	if err := s.repo.CreateWithTransition(ctx, &session, update); err != nil {
		return nil, internalError(err, "failed to create session")
	}

	updated := *student
	update.ApplyTo(&updated)
	s.logger.Info("session created",
		zap.String("rut", student.RUT),
		zap.Int64("id", session.ID),
		zap.Bool("correction", session.EsCorreccion),
		zap.String("by", actor.Username))
	s.invalidateDashboard(ctx)
	return &SessionResult{Session: session, Student: updated}, nil
}

// Get returns a session with its superseded flag and the edit form context.
func (s *SessionService) Get(ctx context.Context, id int64, actor models.Actor) (*SessionView, error) {
	session, student, err := s.loadSession(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByStudent(ctx, student.RUT)
	if err != nil {
		return nil, internalError(err, "failed to load sessions")
	}
	casework.MarkCorrected(sessions)
	for _, other := range sessions {
		if other.ID == session.ID {
			session.FueCorregido = other.FueCorregido
		}
	}
	return &SessionView{Session: *session, Form: s.formContext(*student, sessions)}, nil
}

// Update edits a session in place and promotes a non-empty observed derivation status to
// the student. Correction linkage and discharge flags are left untouched.
func (s *SessionService) Update(ctx context.Context, id int64, req SessionEditRequest, actor models.Actor) (*SessionResult, error) {
	session, student, err := s.loadSession(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	req = normalizeSessionEdit(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}

	session.FechaSesion = *req.FechaSesion
	session.TrabajadoraSocialSesion = req.TrabajadoraSocialSesion
	session.PsicologoSesion = req.PsicologoSesion
	session.TipoIntervencion = req.TipoIntervencion
	session.ResultadoCita = req.ResultadoCita
	session.EstadoDerivacionCESFAMActual = req.EstadoDerivacionCESFAMActual
	session.ConfirmacionGestionHoraCESFAM = req.ConfirmacionGestionHoraCESFAM
	session.FechasSesionesCESFAM = req.FechasSesionesCESFAM
	session.BitacoraSesion = req.BitacoraSesion

	update := casework.Apply(casework.Transition{EstadoDerivacionCESFAMActual: req.EstadoDerivacionCESFAMActual})
	if err := s.repo.UpdateWithPromotion(ctx, session, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "seguimiento no encontrado")
		}
		return nil, internalError(err, "failed to update session")
	}

	updated := *student
	update.ApplyTo(&updated)
	s.invalidateDashboard(ctx)
	return &SessionResult{Session: *session, Student: updated}, nil
}

// Delete removes a session. Administrators only.
func (s *SessionService) Delete(ctx context.Context, id int64, actor models.Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "seguimiento no encontrado")
		}
		return internalError(err, "failed to load session")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "seguimiento no encontrado")
		}
		return internalError(err, "failed to delete session")
	}

	if s.audit != nil {
		resourceID := strconv.FormatInt(id, 10)
		oldValues, _ := json.Marshal(map[string]interface{}{
			"rut_estudiante": session.RUTEstudiante,
			"fecha_sesion":   session.FechaSesion,
			"es_correccion":  session.EsCorreccion,
		})
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     optionalString(actor.UserID),
			Action:     models.AuditActionSessionDelete,
			Resource:   models.AuditResourceSession,
			ResourceID: &resourceID,
			OldValues:  oldValues,
			IPAddress:  actor.IP,
			UserAgent:  actor.Agent,
		}); err != nil {
			s.logger.Warn("failed to record session delete audit log", zap.Error(err))
		}
	}
	s.invalidateDashboard(ctx)
	return nil
}

func (s *SessionService) loadStudent(ctx context.Context, rut string) (*models.Student, error) {
	student, err := s.students.FindByRUT(ctx, strings.TrimSpace(rut))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// loadSession fetches a session and its student, enforcing write access.
func (s *SessionService) loadSession(ctx context.Context, id int64, actor models.Actor) (*models.Session, *models.Student, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "seguimiento no encontrado")
		}
		return nil, nil, internalError(err, "failed to load session")
	}
	student, err := s.loadStudent(ctx, session.RUTEstudiante)
	if err != nil {
		return nil, nil, err
	}
	if !canWriteSessions(actor, *student) {
		return nil, nil, notAssigned()
	}
	return session, student, nil
}

func (s *SessionService) formContext(student models.Student, sessions []models.Session) SessionFormContext {
	return SessionFormContext{
		RUT:                      student.RUT,
		NombreEstudiante:         student.FullName(),
		EstadoEnPrograma:         student.EstadoEnPrograma,
		EstadoDerivacionMaestro:  student.EstadoDerivacionMaestro,
		SeccionDerivacionVisible: casework.DerivationSectionVisible(student.EstadoDerivacionMaestro),
		Recordatorio:             casework.DerivationReminder(casework.LatestSession(sessions)),
		SesionesCorregibles:      casework.CorrectableSessions(student.RUT, sessions),
		TrabajadoraSocial:        student.TrabajadoraSocialAsignada,
		Psicologo:                student.PsicologoAsignado,
		FechaSesion:              s.today(),
	}
}

func (s *SessionService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func normalizeSessionEdit(req SessionEditRequest) SessionEditRequest {
	req.TrabajadoraSocialSesion = canonicalValue(catalog.TrabajadoraSocial, req.TrabajadoraSocialSesion)
	req.PsicologoSesion = canonicalValue(catalog.Psicologo, req.PsicologoSesion)
	req.TipoIntervencion = canonicalValue(catalog.TipoIntervencion, req.TipoIntervencion)
	req.ResultadoCita = canonicalValue(catalog.ResultadoCita, req.ResultadoCita)
	req.EstadoDerivacionCESFAMActual = canonicalValue(catalog.EstadoDerivacion, req.EstadoDerivacionCESFAMActual)
	req.ConfirmacionGestionHoraCESFAM = canonicalValue(catalog.AsistenciaControlesCESFAM, req.ConfirmacionGestionHoraCESFAM)
	req.FechasSesionesCESFAM = strings.TrimSpace(req.FechasSesionesCESFAM)
	req.BitacoraSesion = strings.TrimSpace(req.BitacoraSesion)
	return req
}

func normalizeSessionRequest(req SessionRequest) SessionRequest {
	req.SessionEditRequest = normalizeSessionEdit(req.SessionEditRequest)
	req.NuevoEstadoPrograma = canonicalValue(catalog.EstadoPrograma, req.NuevoEstadoPrograma)
	req.NuevoEstadoAcademico = canonicalValue(catalog.EstadoAcademico, req.NuevoEstadoAcademico)
	req.BeneficioArancel = canonicalValue(catalog.BeneficioArancel, req.BeneficioArancel)
	return req
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
