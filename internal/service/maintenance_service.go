package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type maintenanceStudentStore interface {
	TrimTextColumns(ctx context.Context) (int64, error)
	ListWithoutPeriod(ctx context.Context) ([]models.Student, error)
}

type periodCreator interface {
	Create(ctx context.Context, period *models.AttentionPeriod) error
}

type roleCounter interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type userCreator interface {
	Create(ctx context.Context, req CreateUserRequest, actor models.Actor) (*models.User, error)
}

// SystemActor is used for changes made by the maintenance CLI.
var SystemActor = models.Actor{Username: "sistema", FullName: "Sistema", Role: models.RoleAdmin}

// BackfillResult summarises a period backfill run.
type BackfillResult struct {
	Created int      `json:"creados"`
	Skipped []string `json:"omitidos"`
}

// MaintenanceService bundles the data-cleaning utilities.
type MaintenanceService struct {
	students maintenanceStudentStore
	periods  periodCreator
	roles    roleCounter
	users    userCreator
	audit    auditRecorder
	cache    cacheInvalidator
	logger   *zap.Logger
}

// MaintenanceDeps groups constructor dependencies.
type MaintenanceDeps struct {
	Students maintenanceStudentStore
	Periods  periodCreator
	Roles    roleCounter
	Users    userCreator
	Audit    auditRecorder
	Cache    cacheInvalidator
	Logger   *zap.Logger
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(deps MaintenanceDeps) *MaintenanceService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &MaintenanceService{
		students: deps.Students,
		periods:  deps.Periods,
		roles:    deps.Roles,
		users:    deps.Users,
		audit:    deps.Audit,
		cache:    deps.Cache,
		logger:   deps.Logger,
	}
}

// TrimText strips surrounding whitespace from the student text columns and returns
// how many students changed.
func (s *MaintenanceService) TrimText(ctx context.Context, actor models.Actor) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	affected, err := s.students.TrimTextColumns(ctx)
	if err != nil {
		return 0, internalError(err, "failed to trim student text")
	}
	s.logger.Info("student text trimmed", zap.Int64("students", affected), zap.String("by", actor.Username))
	s.record(ctx, actor, "trim-text", map[string]interface{}{"estudiantes": affected})
	if affected > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	return affected, nil
}

// BackfillPeriods opens the initial attention period, with its academic snapshot, for
// students that have none. Students missing entry date, reason or status are skipped.
func (s *MaintenanceService) BackfillPeriods(ctx context.Context, actor models.Actor) (*BackfillResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	students, err := s.students.ListWithoutPeriod(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list students without period")
	}
	result := &BackfillResult{Skipped: []string{}}
	for _, st := range students {
		motivo := strings.TrimSpace(st.TentativaIdeacion)
		estado := strings.TrimSpace(st.EstadoEnPrograma)
		if st.FechaIngresoPrograma == nil || st.FechaIngresoPrograma.IsZero() || motivo == "" || estado == "" {
			result.Skipped = append(result.Skipped, st.RUT)
			continue
		}
		period := &models.AttentionPeriod{
			RUTEstudiante:          st.RUT,
			FechaIngreso:           *st.FechaIngresoPrograma,
			MotivoIngreso:          motivo,
			EstadoPeriodo:          estado,
			CarreraPeriodo:         st.CarreraPrograma,
			FacultadPeriodo:        st.Facultad,
			EstadoAcademicoPeriodo: st.EstadoAcademico,
		}
		if err := s.periods.Create(ctx, period); err != nil {
			return result, internalError(err, "failed to create attention period")
		}
		result.Created++
	}
	s.logger.Info("attention periods backfilled",
		zap.Int("created", result.Created),
		zap.Int("skipped", len(result.Skipped)))
	s.record(ctx, actor, "backfill-periods", map[string]interface{}{"creados": result.Created, "omitidos": len(result.Skipped)})
	return result, nil
}

// EnsureAdmin creates the first administrator. It refuses when one already exists.
func (s *MaintenanceService) EnsureAdmin(ctx context.Context, username, fullName, password string) (*models.User, error) {
	total, err := s.roles.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, internalError(err, "failed to count administrators")
	}
	if total > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe al menos un usuario administrador")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "full name is required"),
			map[string]string{"nombre_completo": "required"})
	}
	user, err := s.users.Create(ctx, CreateUserRequest{
		Username:        username,
		FullName:        fullName,
		Role:            models.RoleAdmin,
		Password:        password,
		ConfirmPassword: password,
	}, SystemActor)
	if err != nil {
		return nil, err
	}
	s.logger.Info("administrator created", zap.String("username", user.Username))
	return user, nil
}

func (s *MaintenanceService) record(ctx context.Context, actor models.Actor, task string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     optionalString(actor.UserID),
		Action:     models.AuditActionMaintenance,
		Resource:   models.AuditResourceStudents,
		ResourceID: &task,
		NewValues:  payload,
		IPAddress:  actor.IP,
		UserAgent:  actor.Agent,
	}); err != nil {
		s.logger.Warn("failed to record maintenance audit log", zap.Error(err))
	}
}
