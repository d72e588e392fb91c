package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/casework"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByRUT(ctx context.Context, rut string) (*models.Student, error)
	Exists(ctx context.Context, rut string) (bool, error)
	CreateWithPeriod(ctx context.Context, student *models.Student, period *models.AttentionPeriod) error
	UpdateWithHistory(ctx context.Context, student *models.Student, entry *models.ChangeHistory) error
	LastSessions(ctx context.Context, assignedTo *string) ([]models.StudentLastSession, error)
	ActiveByYear(ctx context.Context) ([]models.YearCount, error)
}

type studentSessionReader interface {
	ListByStudent(ctx context.Context, rut string) ([]models.Session, error)
}

type attentionPeriodRepository interface {
	ListByStudent(ctx context.Context, rut string) ([]models.AttentionPeriod, error)
	RegisterReentry(ctx context.Context, student *models.Student, closed *models.AttentionPeriod, opened *models.AttentionPeriod) error
}

type changeHistoryReader interface {
	ListForRecord(ctx context.Context, model, recordID string) ([]models.ChangeHistory, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// StudentInput holds the editable student attributes shared by create and edit.
type StudentInput struct {
	Nombre                       string       `json:"nombre" validate:"required,max=100"`
	ApellidoPaterno              string       `json:"apellido_paterno" validate:"required,max=100"`
	ApellidoMaterno              string       `json:"apellido_materno" validate:"max=100"`
	Genero                       string       `json:"genero" validate:"omitempty,catalog=genero"`
	Sexo                         string       `json:"sexo" validate:"omitempty,catalog=sexo"`
	FechaNacimiento              *models.Date `json:"fecha_nacimiento"`
	Nacionalidad                 string       `json:"nacionalidad" validate:"omitempty,catalog=nacionalidad"`
	EstadoCivil                  string       `json:"estado_civil" validate:"omitempty,catalog=estado_civil"`
	TieneHijos                   string       `json:"tiene_hijos" validate:"omitempty,catalog=tiene_hijos"`
	OcupacionLaboral             string       `json:"ocupacion_laboral" validate:"omitempty,catalog=ocupacion_laboral"`
	ResidenciaAcademica          string       `json:"residencia_academica" validate:"max=200"`
	ResidenciaFamiliar           string       `json:"residencia_familiar" validate:"max=200"`
	Celular                      string       `json:"celular" validate:"max=30"`
	Facultad                     string       `json:"facultad" validate:"omitempty,catalog=facultad"`
	CarreraPrograma              string       `json:"carrera_programa" validate:"omitempty,catalog=carrera"`
	EstadoAcademico              string       `json:"estado_academico" validate:"omitempty,catalog=estado_academico"`
	FechaIngresoPrograma         *models.Date `json:"fecha_ingreso_programa"`
	FuenteDerivacion             string       `json:"fuente_derivacion" validate:"omitempty,catalog=fuente_derivacion"`
	EstadoEnPrograma             string       `json:"estado_en_programa" validate:"required,catalog=estado_programa"`
	TrabajadoraSocialAsignada    string       `json:"trabajadora_social_asignada" validate:"omitempty,catalog=trabajadora_social"`
	PsicologoAsignado            string       `json:"psicologo_asignado" validate:"omitempty,catalog=psicologo"`
	FechaDerivacionCESFAM        *models.Date `json:"fecha_derivacion_cesfam"`
	CESFAMDerivacion             string       `json:"cesfam_derivacion" validate:"omitempty,catalog=cesfam"`
	TentativaIdeacion            string       `json:"tentativa_ideacion" validate:"omitempty,catalog=tentativa_ideacion"`
	AutorizaInvestigacion        bool         `json:"autoriza_investigacion"`
	NombreContactoEmergencia     string       `json:"nombre_contacto_emergencia" validate:"max=150"`
	ParentescoContactoEmergencia string       `json:"parentesco_contacto_emergencia" validate:"omitempty,catalog=parentesco"`
	TelefonoContactoEmergencia   string       `json:"telefono_contacto_emergencia" validate:"max=30"`
	BeneficioArancel             string       `json:"beneficio_arancel" validate:"omitempty,catalog=beneficio_arancel"`
	EstadoDerivacionMaestro      string       `json:"estado_derivacion_maestro" validate:"omitempty,catalog=estado_derivacion"`
	NotaImportante               string       `json:"nota_importante" validate:"max=2000"`
}

// CreateStudentRequest is the intake payload; the RUT cannot be changed afterwards.
type CreateStudentRequest struct {
	RUT string `json:"rut" validate:"required,max=20"`
	StudentInput
}

// ReentryRequest registers a new attention period for a student who left the program.
type ReentryRequest struct {
	FechaIngreso  *models.Date `json:"fecha_ingreso" validate:"required"`
	MotivoIngreso string       `json:"motivo_ingreso" validate:"required,catalog=tentativa_ideacion"`
}

// StudentDetail is the case file view of one student.
type StudentDetail struct {
	Student         models.Student           `json:"estudiante"`
	Edad            *int                     `json:"edad"`
	Sessions        []models.Session         `json:"seguimientos"`
	History         []models.ChangeHistory   `json:"historial"`
	UltimaExtension *models.Date             `json:"ultima_extension"`
	SesionAlta      *models.Session          `json:"sesion_alta"`
	Periodos        []models.AttentionPeriod `json:"periodos_atencion"`
}

// StudentUpdateResult reports the stored student and the detected changes.
type StudentUpdateResult struct {
	Student models.Student    `json:"estudiante"`
	Changes []casework.Change `json:"cambios"`
}

// ReentryResult pairs the reopened student with its new attention period.
type ReentryResult struct {
	Student models.Student         `json:"estudiante"`
	Period  models.AttentionPeriod `json:"periodo"`
}

// States a student may be registered with at intake.
var initialProgramStates = map[string]struct{}{
	catalog.EstadoActivo:   {},
	catalog.EstadoNoAcepta: {},
}

// StudentService handles student use-cases.
type StudentService struct {
	repo           studentRepository
	sessions       studentSessionReader
	periods        attentionPeriodRepository
	history        changeHistoryReader
	cache          cacheInvalidator
	validator      *validator.Validate
	logger         *zap.Logger
	alertThreshold int
	today          func() models.Date
}

// StudentServiceDeps groups the collaborators of StudentService.
type StudentServiceDeps struct {
	Students       studentRepository
	Sessions       studentSessionReader
	Periods        attentionPeriodRepository
	History        changeHistoryReader
	Cache          cacheInvalidator
	Validator      *validator.Validate
	Logger         *zap.Logger
	AlertThreshold int
}

// NewStudentService constructs the student service.
func NewStudentService(deps StudentServiceDeps) *StudentService {
	validate := deps.Validator
	if validate == nil {
		validate = catalog.NewValidator()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:           deps.Students,
		sessions:       deps.Sessions,
		periods:        deps.Periods,
		history:        deps.History,
		cache:          deps.Cache,
		validator:      validate,
		logger:         logger,
		alertThreshold: deps.AlertThreshold,
		today:          func() models.Date { return models.Today(time.Local) },
	}
}

// List returns the index page, limited to the caller's caseload for professionals.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, actor models.Actor) ([]models.Student, *models.Pagination, error) {
	filter.AssignedTo = studentScope(actor)
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Alerts lists the caller's active students without a recent follow-up.
func (s *StudentService) Alerts(ctx context.Context, actor models.Actor) ([]models.FollowUpAlert, error) {
	rows, err := s.repo.LastSessions(ctx, studentScope(actor))
	if err != nil {
		return nil, internalError(err, "failed to load last sessions")
	}
	return casework.ComputeAlerts(rows, s.today(), s.alertThreshold), nil
}

// ActiveByYear returns active student counts per entry year.
func (s *StudentService) ActiveByYear(ctx context.Context) ([]models.YearCount, error) {
	counts, err := s.repo.ActiveByYear(ctx)
	if err != nil {
		return nil, internalError(err, "failed to count active students")
	}
	return counts, nil
}

// Create registers a student and, for students entering with a known reason, opens
// their first attention period.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest, actor models.Actor) (*models.Student, error) {
	if !canRegisterStudents(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no tiene permiso para registrar estudiantes")
	}

	req.RUT = strings.TrimSpace(req.RUT)
	req.StudentInput = normalizeInput(req.StudentInput)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if _, ok := initialProgramStates[req.EstadoEnPrograma]; !ok {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid initial program status"),
			map[string]string{"estado_en_programa": "initial_state"})
	}

	exists, err := s.repo.Exists(ctx, req.RUT)
	if err != nil {
		return nil, internalError(err, "failed to check rut")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("ya existe un estudiante con el RUT %s", req.RUT))
	}

	student := models.Student{RUT: req.RUT}
	s.applyInput(&student, req.StudentInput, nil)
	if student.Sexo == "" {
		student.Sexo = catalog.NoRegistrado
	}
	if student.Facultad == "" {
		student.Facultad = catalog.NoRegistrado
	}
	if student.EstadoDerivacionMaestro == "" {
		student.EstadoDerivacionMaestro = catalog.DerivacionPendiente
	}

	if err := s.repo.CreateWithPeriod(ctx, &student, initialPeriod(student)); err != nil {
		return nil, internalError(err, "failed to create student")
	}

	s.logger.Info("student registered", zap.String("rut", student.RUT), zap.String("by", actor.Username))
	s.invalidateDashboard(ctx)
	return &student, nil
}

// Detail assembles the case file: age, sessions with their superseded flag, history,
// last extension, discharge session and attention periods.
func (s *StudentService) Detail(ctx context.Context, rut string, actor models.Actor) (*StudentDetail, error) {
	student, err := s.load(ctx, rut)
	if err != nil {
		return nil, err
	}
	if !canViewStudent(actor, *student) {
		return nil, notAssigned()
	}

	sessions, err := s.sessions.ListByStudent(ctx, rut)
	if err != nil {
		return nil, internalError(err, "failed to load sessions")
	}
	casework.MarkCorrected(sessions)

	history, err := s.history.ListForRecord(ctx, models.HistoryModelStudent, rut)
	if err != nil {
		return nil, internalError(err, "failed to load change history")
	}

	periods, err := s.periods.ListByStudent(ctx, rut)
	if err != nil {
		return nil, internalError(err, "failed to load attention periods")
	}

	return &StudentDetail{
		Student:         *student,
		Edad:            casework.AgeOn(student.FechaNacimiento, s.today()),
		Sessions:        sessions,
		History:         history,
		UltimaExtension: casework.LastExtension(sessions),
		SesionAlta:      casework.DischargeSession(*student, sessions),
		Periodos:        periods,
	}, nil
}

// Update applies an edit and records a history entry describing every changed field.
// No entry is written when nothing changed.
func (s *StudentService) Update(ctx context.Context, rut string, input StudentInput, actor models.Actor) (*StudentUpdateResult, error) {
	before, err := s.load(ctx, rut)
	if err != nil {
		return nil, err
	}
	if !canViewStudent(actor, *before) {
		return nil, notAssigned()
	}

	input = normalizeInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	after := *before
	s.applyInput(&after, input, before.FechaAutorizacionInvestigacion)
	if after.EstadoDerivacionMaestro == "" {
		after.EstadoDerivacionMaestro = before.EstadoDerivacionMaestro
	}

	changes := casework.DiffStudent(*before, after)
	var entry *models.ChangeHistory
	if len(changes) > 0 {
		entry = &models.ChangeHistory{
			FechaCambio:        time.Now(),
			NombreUsuario:      actor.DisplayName(),
			Accion:             models.HistoryActionStudentEdit,
			ModeloAfectado:     models.HistoryModelStudent,
			IDRegistroAfectado: rut,
			Detalles:           casework.FormatChanges(changes),
		}
	}

	if err := s.repo.UpdateWithHistory(ctx, &after, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado")
		}
		return nil, internalError(err, "failed to update student")
	}

	if len(changes) > 0 {
		s.invalidateDashboard(ctx)
	}
	return &StudentUpdateResult{Student: after, Changes: changes}, nil
}

// Reentry closes the current attention period and reopens the student's case. Students
// who are still active cannot re-enter.
func (s *StudentService) Reentry(ctx context.Context, rut string, req ReentryRequest, actor models.Actor) (*ReentryResult, error) {
	if !canRegisterStudents(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no tiene permiso para registrar reingresos")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid reentry payload")
	}

	student, err := s.load(ctx, rut)
	if err != nil {
		return nil, err
	}
	if casework.IsActiveStatus(student.EstadoEnPrograma) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "el estudiante ya se encuentra activo en el programa")
	}

	periods, err := s.periods.ListByStudent(ctx, rut)
	if err != nil {
		return nil, internalError(err, "failed to load attention periods")
	}

	var closed *models.AttentionPeriod
	if n := len(periods); n > 0 {
		last := periods[n-1]
		last.EstadoPeriodo = student.EstadoEnPrograma
		if last.FechaAlta == nil {
			today := s.today()
			last.FechaAlta = &today
		}
		closed = &last
	}

	motivo, _ := catalog.Canonical(catalog.TentativaIdeacion, req.MotivoIngreso)
	opened := models.AttentionPeriod{
		RUTEstudiante:          rut,
		FechaIngreso:           *req.FechaIngreso,
		MotivoIngreso:          motivo,
		EstadoPeriodo:          catalog.EstadoActivoReingreso,
		CarreraPeriodo:         student.CarreraPrograma,
		FacultadPeriodo:        student.Facultad,
		EstadoAcademicoPeriodo: student.EstadoAcademico,
	}

	updated := *student
	updated.EstadoEnPrograma = catalog.EstadoActivoReingreso
	updated.FechaIngresoPrograma = models.DatePtr(*req.FechaIngreso)
	updated.TentativaIdeacion = motivo

	if err := s.periods.RegisterReentry(ctx, &updated, closed, &opened); err != nil {
		return nil, internalError(err, "failed to register reentry")
	}

	s.logger.Info("student reentry registered", zap.String("rut", rut), zap.String("by", actor.Username))
	s.invalidateDashboard(ctx)
	return &ReentryResult{Student: updated, Period: opened}, nil
}

func (s *StudentService) load(ctx context.Context, rut string) (*models.Student, error) {
	student, err := s.repo.FindByRUT(ctx, strings.TrimSpace(rut))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// applyInput copies the request onto the student. The research authorization date is
// kept when already authorized, set to today on a new authorization and cleared otherwise.
func (s *StudentService) applyInput(dst *models.Student, in StudentInput, authorizedOn *models.Date) {
	dst.Nombre = in.Nombre
	dst.ApellidoPaterno = in.ApellidoPaterno
	dst.ApellidoMaterno = in.ApellidoMaterno
	dst.Genero = in.Genero
	dst.Sexo = in.Sexo
	dst.FechaNacimiento = in.FechaNacimiento
	dst.Nacionalidad = in.Nacionalidad
	dst.EstadoCivil = in.EstadoCivil
	dst.TieneHijos = in.TieneHijos
	dst.OcupacionLaboral = in.OcupacionLaboral
	dst.ResidenciaAcademica = in.ResidenciaAcademica
	dst.ResidenciaFamiliar = in.ResidenciaFamiliar
	dst.Celular = in.Celular
	dst.Facultad = in.Facultad
	dst.CarreraPrograma = in.CarreraPrograma
	dst.EstadoAcademico = in.EstadoAcademico
	dst.FechaIngresoPrograma = in.FechaIngresoPrograma
	dst.FuenteDerivacion = in.FuenteDerivacion
	dst.EstadoEnPrograma = in.EstadoEnPrograma
	dst.TrabajadoraSocialAsignada = in.TrabajadoraSocialAsignada
	dst.PsicologoAsignado = in.PsicologoAsignado
	dst.FechaDerivacionCESFAM = in.FechaDerivacionCESFAM
	dst.CESFAMDerivacion = in.CESFAMDerivacion
	dst.TentativaIdeacion = in.TentativaIdeacion
	dst.NombreContactoEmergencia = in.NombreContactoEmergencia
	dst.ParentescoContactoEmergencia = in.ParentescoContactoEmergencia
	dst.TelefonoContactoEmergencia = in.TelefonoContactoEmergencia
	dst.BeneficioArancel = in.BeneficioArancel
	dst.EstadoDerivacionMaestro = in.EstadoDerivacionMaestro
	dst.NotaImportante = in.NotaImportante

	switch {
	case !in.AutorizaInvestigacion:
		dst.FechaAutorizacionInvestigacion = nil
	case authorizedOn != nil && !authorizedOn.IsZero():
		dst.FechaAutorizacionInvestigacion = authorizedOn
	default:
		dst.FechaAutorizacionInvestigacion = models.DatePtr(s.today())
	}
}

func (s *StudentService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// initialPeriod opens the first attention period when the entry date and reason are known.
func initialPeriod(student models.Student) *models.AttentionPeriod {
	if student.FechaIngresoPrograma == nil || student.FechaIngresoPrograma.IsZero() {
		return nil
	}
	if student.TentativaIdeacion != catalog.MotivoIdeacion && student.TentativaIdeacion != catalog.MotivoTentativa {
		return nil
	}
	return &models.AttentionPeriod{
		RUTEstudiante:          student.RUT,
		FechaIngreso:           *student.FechaIngresoPrograma,
		MotivoIngreso:          student.TentativaIdeacion,
		EstadoPeriodo:          student.EstadoEnPrograma,
		CarreraPeriodo:         student.CarreraPrograma,
		FacultadPeriodo:        student.Facultad,
		EstadoAcademicoPeriodo: student.EstadoAcademico,
	}
}

// normalizeInput trims free text and maps catalog values onto their stored spelling.
func normalizeInput(in StudentInput) StudentInput {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.ApellidoPaterno = strings.TrimSpace(in.ApellidoPaterno)
	in.ApellidoMaterno = strings.TrimSpace(in.ApellidoMaterno)
	in.ResidenciaAcademica = strings.TrimSpace(in.ResidenciaAcademica)
	in.ResidenciaFamiliar = strings.TrimSpace(in.ResidenciaFamiliar)
	in.Celular = strings.TrimSpace(in.Celular)
	in.NombreContactoEmergencia = strings.TrimSpace(in.NombreContactoEmergencia)
	in.TelefonoContactoEmergencia = strings.TrimSpace(in.TelefonoContactoEmergencia)
	in.NotaImportante = strings.TrimSpace(in.NotaImportante)

	for _, f := range []struct {
		name  catalog.Name
		value *string
	}{
		{catalog.Genero, &in.Genero},
		{catalog.Sexo, &in.Sexo},
		{catalog.Nacionalidad, &in.Nacionalidad},
		{catalog.EstadoCivil, &in.EstadoCivil},
		{catalog.TieneHijos, &in.TieneHijos},
		{catalog.OcupacionLaboral, &in.OcupacionLaboral},
		{catalog.Facultad, &in.Facultad},
		{catalog.Carrera, &in.CarreraPrograma},
		{catalog.EstadoAcademico, &in.EstadoAcademico},
		{catalog.FuenteDerivacion, &in.FuenteDerivacion},
		{catalog.EstadoPrograma, &in.EstadoEnPrograma},
		{catalog.TrabajadoraSocial, &in.TrabajadoraSocialAsignada},
		{catalog.Psicologo, &in.PsicologoAsignado},
		{catalog.CESFAM, &in.CESFAMDerivacion},
		{catalog.TentativaIdeacion, &in.TentativaIdeacion},
		{catalog.Parentesco, &in.ParentescoContactoEmergencia},
		{catalog.BeneficioArancel, &in.BeneficioArancel},
		{catalog.EstadoDerivacion, &in.EstadoDerivacionMaestro},
	} {
		*f.value = canonicalValue(f.name, *f.value)
	}
	return in
}

func canonicalValue(name catalog.Name, v string) string {
	if canonical, ok := catalog.Canonical(name, v); ok {
		return canonical
	}
	return strings.TrimSpace(v)
}
