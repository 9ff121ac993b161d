package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/auth"
	"github.com/yigit/campus/internal/pkg/validation"
)

// AdminService defines administrator account management
type AdminService interface {
	ListAdmins(ctx context.Context) ([]*models.Admin, error)
	GetAdminByID(ctx context.Context, id int64) (*models.Admin, error)
	CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, id int64, email, password string) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id int64) error
	// EnsureDefaultAdmin creates the account when no administrator exists yet
	EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error)
}

// adminServiceImpl implements the AdminService interface
type adminServiceImpl struct {
	adminRepo *repositories.AdminRepository
	verifier  auth.PasswordVerifier
	logger    zerolog.Logger
}

// NewAdminService creates a new admin service instance
func NewAdminService(adminRepo *repositories.AdminRepository, verifier auth.PasswordVerifier, logger zerolog.Logger) AdminService {
	return &adminServiceImpl{
		adminRepo: adminRepo,
		verifier:  verifier,
		logger:    logger,
	}
}

func (s *adminServiceImpl) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	return s.adminRepo.List(ctx)
}

func (s *adminServiceImpl) GetAdminByID(ctx context.Context, id int64) (*models.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

func (s *adminServiceImpl) CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("", "All fields are required.")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	admin, err := createAdmin(ctx, s.adminRepo, s.verifier, email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("adminID", admin.ID).Str("email", admin.Email).Msg("Administrator added")
	return admin, nil
}

// UpdateAdmin changes the email and, when password is not blank, the password
func (s *adminServiceImpl) UpdateAdmin(ctx context.Context, id int64, email, password string) (*models.Admin, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	admin.Email = email
	admin.Password = ""
	if strings.TrimSpace(password) != "" {
		digest, err := s.verifier.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		admin.Password = digest
	}

	if err := s.adminRepo.Update(ctx, admin); err != nil {
		if apperrors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrEmailAlreadyExists, err)
		}
		return nil, err
	}

	s.logger.Info().Int64("adminID", id).Bool("passwordChanged", admin.Password != "").Msg("Administrator updated")
	return s.adminRepo.GetByID(ctx, id)
}

func (s *adminServiceImpl) DeleteAdmin(ctx context.Context, id int64) error {
	if err := s.adminRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("adminID", id).Msg("Administrator deleted")
	return nil
}

func (s *adminServiceImpl) EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error) {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, email, password); err != nil {
		return false, err
	}
	return true, nil
}
