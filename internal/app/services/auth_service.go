package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/auth"
	"github.com/yigit/campus/internal/pkg/validation"
)

// AuthService handles administrator authentication
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.Admin, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthOptions carries the configurable parts of authentication
type AuthOptions struct {
	AllowRegistration bool
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	adminRepo  *repositories.AdminRepository
	verifier   auth.PasswordVerifier
	jwtService *auth.JWTService
	revoker    auth.Revoker
	options    AuthOptions
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	adminRepo *repositories.AdminRepository,
	verifier auth.PasswordVerifier,
	jwtService *auth.JWTService,
	revoker auth.Revoker,
	options AuthOptions,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		adminRepo:  adminRepo,
		verifier:   verifier,
		jwtService: jwtService,
		revoker:    revoker,
		options:    options,
		logger:     logger,
	}
}

// Register creates an administrator from the public sign-up form
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.Admin, error) {
	if !s.options.AllowRegistration {
		return nil, apperrors.ErrRegistrationClosed
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, apperrors.NewValidationError("", "All fields are required.")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, &apperrors.CustomError{Err: apperrors.ErrPasswordMismatch, Message: "Passwords do not match.", Field: "confirmPassword"}
	}

	admin, err := createAdmin(ctx, s.adminRepo, s.verifier, email, req.Password)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("adminID", admin.ID).Str("email", admin.Email).Msg("Administrator registered")
	return admin, nil
}

// Login checks the credentials and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("", "Please enter both email and password.")
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if !s.verifier.Verify(admin.Password, req.Password) {
		s.logger.Warn().Str("email", email).Msg("Password mismatch on login")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(admin)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresIn),
		Admin:       dto.NewAdminResponse(admin),
	}, nil
}

// Logout revokes the token the claims came from until it expires
func (s *authServiceImpl) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return err
	}
	s.logger.Info().Int64("adminID", claims.AdminID).Msg("Administrator logged out")
	return nil
}

// Authenticate validates a token, rejects revoked ones and confirms the
// administrator still exists.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	if _, err := s.adminRepo.GetByID(ctx, claims.AdminID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	return claims, nil
}

// createAdmin hashes the password and stores a new administrator. The email
// check up front gives a clean error; the unique constraint still decides races.
func createAdmin(ctx context.Context, repo *repositories.AdminRepository, verifier auth.PasswordVerifier, email, password string) (*models.Admin, error) {
	exists, err := repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	digest, err := verifier.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{Email: email, Password: digest}
	if err := repo.Create(ctx, admin); err != nil {
		if apperrors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrEmailAlreadyExists, err)
		}
		return nil, err
	}
	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
