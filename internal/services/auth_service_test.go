package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/portfolio/internal/auth"
	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/testutil"
	"github.com/yoockh/portfolio/internal/utils"
)

func newAuthService(store *testutil.Store) AuthService {
	return NewAuthService(store.Users(), auth.NewTokenManager("test-secret", time.Hour))
}

func TestAuthService_RegisterLoginAuthenticate(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: " Jane@Example.com ", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "jane@example.com", reg.User.Email)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.NotEqual(t, "hunter22", reg.User.PasswordHash)

	login, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	u, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Jane 2", Email: "JANE@example.com", Password: "hunter22"})
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(testutil.NewStore())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "J", Email: "bad", Password: "123"})
	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, utils.CodeInvalidArgument, ae.Code)
	assert.Contains(t, ae.Fields, "name")
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")
}

func TestAuthService_LoginRejects(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	store.SeedUser(t, "Jane", "jane@example.com", models.RoleUser)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-password"})
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestAuthService_AuthenticateRejects(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "garbage")
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))

	other := auth.NewTokenManager("other-secret", time.Hour)
	victim := store.SeedUser(t, "Victim", "victim@example.com", models.RoleUser)
	forged, _, err := other.Issue(victim)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, forged)
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))

	reg, err := svc.Register(ctx, RegisterInput{Name: "Gone", Email: "gone@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NoError(t, store.Users().Delete(ctx, reg.User.ID))
	_, err = svc.Authenticate(ctx, reg.Token)
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
	assert.Contains(t, err.Error(), "user not found")
}

func TestAuthService_AuthenticateUsesStoredRole(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NoError(t, store.Users().SetRole(ctx, reg.User.ID, models.RoleAdmin))

	u, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "", "Admin@Example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.Equal(t, "Admin", created.Name)

	again, err := svc.EnsureAdmin(ctx, "Admin", "admin@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	existing := store.SeedUser(t, "Jane", "jane@example.com", models.RoleUser)
	promoted, err := svc.EnsureAdmin(ctx, "Jane", "jane@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, promoted.ID)

	stored, err := store.Users().GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	_, err = svc.EnsureAdmin(ctx, "x", "", "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
