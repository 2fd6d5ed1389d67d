package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/repository"
	"github.com/campushq/attendly/pkg/errors"
	"github.com/campushq/attendly/pkg/kvstore"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	store := kvstore.NewMemory()
	users := repository.NewUsers(store, nil)
	recents := repository.NewRecentLogins(store, nil)
	return NewAuthService(users, recents, nil, nil, AuthConfig{
		SessionSecret: "test_secret",
		SessionTTL:    time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@college.edu",
		Department:      "BCA",
		Role:            models.RoleTeacher,
		Username:        "jane_doe",
		EmployeeID:      "EMP001",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	info, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", info.Username)
	assert.Equal(t, models.RoleTeacher, info.Role)

	resp, err := svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "jane@college.edu", resp.User.Email)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"short password", func(r *RegisterRequest) { r.Password = "abc"; r.ConfirmPassword = "abc" }},
		{"password mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "different1" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"short username", func(r *RegisterRequest) { r.Username = "ab" }},
		{"unknown role", func(r *RegisterRequest) { r.Role = "Janitor" }},
		{"missing first name", func(r *RegisterRequest) { r.FirstName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest()
			tt.mutate(&req)
			_, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, errors.ErrValidation)
		})
	}
}

func TestRegisterUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Email = "other@college.edu"
	dup.EmployeeID = "EMP002"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, errors.ErrConflict)

	dup = registerRequest()
	dup.Username = "other_user"
	dup.Email = "other@college.edu"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, errors.ErrConflict)

	dup = registerRequest()
	dup.Username = "other_user"
	dup.EmployeeID = "EMP002"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, errors.ErrConflict)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "wrong"})
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginRecordsRecentLogins(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "secret123"})
	require.NoError(t, err)

	logins := svc.RecentLogins()
	require.Len(t, logins, 1)
	assert.Equal(t, "jane_doe", logins[0].Username)

	require.NoError(t, svc.ClearRecentLogins(ctx))
	assert.Empty(t, svc.RecentLogins())
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.VerifySession(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", claims.Username)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "BCA", claims.Department)

	user, err := svc.CurrentUser(claims)
	require.NoError(t, err)
	assert.Equal(t, "EMP001", user.EmployeeID)

	_, err = svc.VerifySession("not.a.token")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestVerifySessionRejectsForeignSecret(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "secret123"})
	require.NoError(t, err)

	other := newAuthService(t)
	other.config.SessionSecret = "different_secret"
	_, err = other.VerifySession(resp.Token)
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "jane@college.edu", "brandnew1"))

	_, err = svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "secret123"})
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Username: "jane_doe", Password: "brandnew1"})
	assert.NoError(t, err)
}

func TestResetPasswordErrors(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	err := svc.ResetPassword(ctx, "ghost@college.edu", "brandnew1")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	err = svc.ResetPassword(ctx, "ghost@college.edu", "abc")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	require.NoError(t, svc.EnsureDefaultAdmin(ctx))

	resp, err := svc.Login(ctx, LoginRequest{Username: "teacher", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Equal(t, "ADM001", resp.User.EmployeeID)

	// Idempotent, and never seeded once any account exists.
	require.NoError(t, svc.EnsureDefaultAdmin(ctx))
	assert.Equal(t, 1, svc.users.Count())
}

func TestEnsureDefaultAdminSkipsNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, svc.EnsureDefaultAdmin(ctx))
	_, ok := svc.users.FindByUsername("teacher")
	assert.False(t, ok)
}
