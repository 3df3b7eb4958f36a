package service_test

import (
	"context"
	"testing"

	"cashdesk/internal/config"
	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEnv() (*fakeUserRepo, service.AuthService) {
	repo := newFakeUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return repo, service.NewAuthService(repo, cfg)
}

func TestCreateUserAndLogin(t *testing.T) {
	_, svc := newAuthEnv()

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "carla",
		Name:     "Carla",
		Password: "s3cret-pass",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, created.Role)
	assert.True(t, created.Active)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "carla", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "carla", resp.User.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, svc := newAuthEnv()

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "carla", Name: "Carla", Password: "s3cret-pass", Role: model.RoleCashier,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "carla", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	_, svc := newAuthEnv()

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "ada", Name: "Ada", Password: "s3cret-pass", Role: model.RoleAdmin,
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ada", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "ada", refreshed.User.Username)

	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDeactivatedUserCannotAuthenticate(t *testing.T) {
	_, svc := newAuthEnv()

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "sam", Name: "Sam", Password: "s3cret-pass", Role: model.RoleSupervisor,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "sam", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(context.Background(), id))

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "sam", Password: "s3cret-pass"})
	assert.Error(t, err, "inactive users are invisible to login")

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.Error(t, err, "refresh stops working once deactivated")

	require.NoError(t, svc.ReactivateUser(context.Background(), id))
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "sam", Password: "s3cret-pass"})
	assert.NoError(t, err)

	users, err := svc.ListUsers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpdateUserChangesRoleAndPassword(t *testing.T) {
	_, svc := newAuthEnv()

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "carla", Name: "Carla", Password: "old-password", Role: model.RoleCashier,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	updated, err := svc.UpdateUser(context.Background(), id, dto.UpdateUserRequest{
		Role: model.RoleSupervisor, Password: "new-password",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleSupervisor, updated.Role)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "carla", Password: "old-password"})
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "carla", Password: "new-password"})
	assert.NoError(t, err)

	_, err = svc.UpdateUser(context.Background(), uuid.New(), dto.UpdateUserRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
