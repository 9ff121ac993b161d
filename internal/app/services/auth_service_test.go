package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.authService(true)

	admin, err := svc.Register(ctx, &dto.RegisterRequest{Email: " A@X.com ", Password: "pw", ConfirmPassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", admin.Email)
	assert.NotEqual(t, "pw", admin.Password)

	token, err := svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, admin.ID, token.Admin.ID)

	claims, err := svc.Authenticate(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.Authenticate(ctx, token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestAuthService_RegisterErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.authService(true)

	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.com", Password: "pw", ConfirmPassword: "other"})
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.com", Password: "", ConfirmPassword: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "not-an-email", Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.com", Password: "pw", ConfirmPassword: "pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.com", Password: "pw2", ConfirmPassword: "pw2"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	closed := env.authService(false)
	_, err = closed.Register(ctx, &dto.RegisterRequest{Email: "b@x.com", Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrRegistrationClosed)
}

func TestAuthService_LoginErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.authService(true)
	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.com", Password: "pw", ConfirmPassword: "pw"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@x.com", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuthService_TokenOfDeletedAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.authService(true)

	admin, err := svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.com", Password: "pw", ConfirmPassword: "pw"})
	require.NoError(t, err)
	token, err := svc.Login(ctx, &dto.LoginRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, env.adminService().DeleteAdmin(ctx, admin.ID))
	_, err = svc.Authenticate(ctx, token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
