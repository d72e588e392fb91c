package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	appErrors "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/errors"
)

type mockAuthRepo struct {
	user                *models.User
	findErr             error
	refreshTokens       map[string]*models.RefreshToken
	createRefreshErr    error
	revokeUserTokensErr error
	revokedAll          bool
	auditLogs           []*models.AuditLog
	lastLoginUpdated    bool
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.user != nil && m.user.ID == id {
		m.user.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = true
	return m.revokeUserTokensErr
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.TokenHash] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[tokenHash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, catalog.NewValidator(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func hashedUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: "u1", Username: "mperez", FullName: "Marianela Riffo", PasswordHash: string(hash), Active: active, Role: models.RoleProfessional}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "password", true)}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "mperez", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "Marianela Riffo", res.User.FullName)
	assert.True(t, repo.lastLoginUpdated)

	_, storedRaw := repo.refreshTokens[res.RefreshToken]
	assert.False(t, storedRaw, "raw refresh token must not be persisted")
	_, storedHash := repo.refreshTokens[HashRefreshToken(res.RefreshToken)]
	assert.True(t, storedHash)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestAuthServiceLoginFailuresShareMessage(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "password", true)}
	svc := newTestAuthService(repo)

	_, errUnknown := svc.Login(context.Background(), models.LoginRequest{Username: "otra", Password: "password"})
	_, errWrong := svc.Login(context.Background(), models.LoginRequest{Username: "mperez", Password: "nope"})
	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(errUnknown).Code)
	assert.Equal(t, appErrors.FromError(errUnknown).Message, appErrors.FromError(errWrong).Message)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "password", false)}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mperez", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "required", appErr.Details["username"])
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	user := hashedUser(t, "password", true)
	repo := &mockAuthRepo{user: user, refreshTokens: map[string]*models.RefreshToken{}}
	old := &models.RefreshToken{ID: "rt1", UserID: user.ID, TokenHash: HashRefreshToken("token"), ExpiresAt: time.Now().Add(time.Hour)}
	repo.refreshTokens[old.TokenHash] = old
	svc := newTestAuthService(repo)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, old.Revoked)
	assert.Contains(t, repo.refreshTokens, HashRefreshToken(res.RefreshToken))
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	user := hashedUser(t, "password", true)
	repo := &mockAuthRepo{user: user, refreshTokens: map[string]*models.RefreshToken{
		HashRefreshToken("token"): {ID: "rt1", UserID: user.ID, TokenHash: HashRefreshToken("token"), ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: map[string]*models.RefreshToken{
		HashRefreshToken("token"): {ID: "rt1", UserID: "someone-else", TokenHash: HashRefreshToken("token"), ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newTestAuthService(repo)

	err := svc.Logout(context.Background(), "token", "u1", RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	user := hashedUser(t, "old-password", true)
	oldHash := user.PasswordHash
	repo := &mockAuthRepo{user: user}
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "nueva-clave",
		ConfirmPassword: "nueva-clave",
	}, RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("nueva-clave")))
	assert.True(t, repo.revokedAll)
}

func TestAuthServiceChangePasswordRejects(t *testing.T) {
	user := hashedUser(t, "old-password", true)
	svc := newTestAuthService(&mockAuthRepo{user: user})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "nueva-clave",
		ConfirmPassword: "nueva-clave",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "mismatch", appErrors.FromError(err).Details["current_password"])

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "nueva-clave",
		ConfirmPassword: "otra-clave",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "eqfield=NewPassword", appErrors.FromError(err).Details["confirm_password"])

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "corta",
		ConfirmPassword: "corta",
	}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "min=6", appErrors.FromError(err).Details["new_password"])
}

func TestValidateToken(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})
	user := &models.User{ID: "u1", Username: "mperez", FullName: "Marianela Riffo", Role: models.RoleProfessional}
	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Marianela Riffo", claims.FullName)
	assert.Equal(t, models.RoleProfessional, claims.Role)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)
}
