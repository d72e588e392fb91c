package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type maintenanceStoreStub struct {
	trimmed  int64
	trimErr  error
	without  []models.Student
	periods  []*models.AttentionPeriod
	admins   int
	created  *CreateUserRequest
	createBy models.Actor
}

func (m *maintenanceStoreStub) TrimTextColumns(context.Context) (int64, error) {
	return m.trimmed, m.trimErr
}

func (m *maintenanceStoreStub) ListWithoutPeriod(context.Context) ([]models.Student, error) {
	return m.without, nil
}

func (m *maintenanceStoreStub) Create(_ context.Context, period *models.AttentionPeriod) error {
	m.periods = append(m.periods, period)
	return nil
}

func (m *maintenanceStoreStub) CountByRole(_ context.Context, role models.UserRole) (int, error) {
	if role != models.RoleAdmin {
		return 0, errors.New("unexpected role")
	}
	return m.admins, nil
}

type userCreatorFunc func(ctx context.Context, req CreateUserRequest, actor models.Actor) (*models.User, error)

func (f userCreatorFunc) Create(ctx context.Context, req CreateUserRequest, actor models.Actor) (*models.User, error) {
	return f(ctx, req, actor)
}

type invalidatorStub struct{ patterns []string }

func (i *invalidatorStub) Invalidate(_ context.Context, pattern string) error {
	i.patterns = append(i.patterns, pattern)
	return nil
}

func newMaintenanceFixture(store *maintenanceStoreStub) (*MaintenanceService, *mockAuditRecorder, *invalidatorStub) {
	audit := &mockAuditRecorder{}
	cache := &invalidatorStub{}
	svc := NewMaintenanceService(MaintenanceDeps{
		Students: store,
		Periods:  store,
		Roles:    store,
		Users: userCreatorFunc(func(_ context.Context, req CreateUserRequest, actor models.Actor) (*models.User, error) {
			store.created = &req
			store.createBy = actor
			return &models.User{ID: "u-1", Username: req.Username, FullName: req.FullName, Role: req.Role}, nil
		}),
		Audit: audit,
		Cache: cache,
	})
	return svc, audit, cache
}

func TestMaintenanceTrimText(t *testing.T) {
	store := &maintenanceStoreStub{trimmed: 4}
	svc, audit, cache := newMaintenanceFixture(store)

	affected, err := svc.TrimText(context.Background(), adminActor)
	require.NoError(t, err)
	assert.EqualValues(t, 4, affected)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionMaintenance, audit.logs[0].Action)
	assert.Equal(t, "trim-text", *audit.logs[0].ResourceID)
	assert.JSONEq(t, `{"estudiantes":4}`, string(audit.logs[0].NewValues))
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)

	_, err = svc.TrimText(context.Background(), intakeActor)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	store.trimErr = errors.New("db down")
	_, err = svc.TrimText(context.Background(), adminActor)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestMaintenanceTrimTextNothingChanged(t *testing.T) {
	store := &maintenanceStoreStub{}
	svc, _, cache := newMaintenanceFixture(store)

	affected, err := svc.TrimText(context.Background(), SystemActor)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Empty(t, cache.patterns)
}

func TestMaintenanceBackfillPeriods(t *testing.T) {
	ingreso := models.NewDate(time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC))
	store := &maintenanceStoreStub{without: []models.Student{
		{
			RUT: "11111111-1", FechaIngresoPrograma: &ingreso, TentativaIdeacion: " Ideación ",
			EstadoEnPrograma: "Activo", CarreraPrograma: "Enfermería", Facultad: "Salud", EstadoAcademico: "Regular",
		},
		{RUT: "22222222-2", TentativaIdeacion: "Tentativa", EstadoEnPrograma: "Activo"},
		{RUT: "33333333-3", FechaIngresoPrograma: &ingreso, EstadoEnPrograma: "Alta"},
	}}
	svc, audit, _ := newMaintenanceFixture(store)

	result, err := svc.BackfillPeriods(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"22222222-2", "33333333-3"}, result.Skipped)

	require.Len(t, store.periods, 1)
	period := store.periods[0]
	assert.Equal(t, "11111111-1", period.RUTEstudiante)
	assert.Equal(t, "2023-03-14", period.FechaIngreso.String())
	assert.Equal(t, "Ideación", period.MotivoIngreso)
	assert.Equal(t, "Activo", period.EstadoPeriodo)
	assert.Nil(t, period.FechaAlta)
	assert.Equal(t, "Enfermería", period.CarreraPeriodo)
	assert.Equal(t, "Salud", period.FacultadPeriodo)
	assert.Equal(t, "Regular", period.EstadoAcademicoPeriodo)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "backfill-periods", *audit.logs[0].ResourceID)
}

func TestMaintenanceEnsureAdmin(t *testing.T) {
	store := &maintenanceStoreStub{}
	svc, _, _ := newMaintenanceFixture(store)

	user, err := svc.EnsureAdmin(context.Background(), "admin", "Administración", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	require.NotNil(t, store.created)
	assert.Equal(t, "secreto1", store.created.ConfirmPassword)
	assert.Equal(t, SystemActor, store.createBy)

	_, err = svc.EnsureAdmin(context.Background(), "admin", "  ", "secreto1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	store.admins = 1
	_, err = svc.EnsureAdmin(context.Background(), "otro", "Otro", "secreto1")
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
