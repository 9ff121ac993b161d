package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/helpers"
)

// AdminRepository handles administrator rows on top of the record store
type AdminRepository struct {
	store *RecordStore
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(store *RecordStore) *AdminRepository {
	return &AdminRepository{store: store}
}

// List returns every administrator
func (r *AdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	rows, err := r.store.FetchAll(ctx, TableAdmin)
	if err != nil {
		return nil, err
	}
	return adminsFromRows(rows)
}

// GetByID retrieves an administrator by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.getOne(ctx, map[string]any{"id": id})
}

// GetByEmail retrieves an administrator by email
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.getOne(ctx, map[string]any{"email": email})
}

// EmailExists checks if an email is already registered
func (r *AdminRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	rows, err := r.store.FetchWhere(ctx, TableAdmin, map[string]any{"email": email})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Create inserts the administrator and fills in the generated ID and creation time.
// A duplicate email is reported as apperrors.ErrDuplicateKey.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	err := r.store.Insert(ctx, TableAdmin, map[string]any{
		"email":    admin.Email,
		"password": admin.Password,
	})
	if err != nil {
		return err
	}

	created, err := r.GetByEmail(ctx, admin.Email)
	if err != nil {
		return fmt.Errorf("failed to read back created admin: %w", err)
	}
	admin.ID = created.ID
	admin.CreatedAt = created.CreatedAt
	return nil
}

// Update writes the email and, when set, the password digest of an existing administrator
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	changes := map[string]any{"email": admin.Email}
	if admin.Password != "" {
		changes["password"] = admin.Password
	}

	_, err := r.store.Update(ctx, TableAdmin, map[string]any{"id": admin.ID}, changes)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %w", apperrors.ErrAdminNotFound, err)
	}
	return err
}

// Delete removes an administrator by ID
func (r *AdminRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.store.Delete(ctx, TableAdmin, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrAdminNotFound
	}
	return nil
}

// Count returns the number of administrators
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	rows, err := r.store.FetchAll(ctx, TableAdmin)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *AdminRepository) getOne(ctx context.Context, filters map[string]any) (*models.Admin, error) {
	rows, err := r.store.FetchWhere(ctx, TableAdmin, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrAdminNotFound
	}
	return adminFromRow(rows[0])
}

func adminsFromRows(rows []Row) ([]*models.Admin, error) {
	admins := make([]*models.Admin, 0, len(rows))
	for _, row := range rows {
		admin, err := adminFromRow(row)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	return admins, nil
}

func adminFromRow(row Row) (*models.Admin, error) {
	id, err := helpers.AsInt64(row["id"])
	if err != nil {
		return nil, fmt.Errorf("admin id: %w", err)
	}
	createdAt, err := helpers.AsTime(row["created_at"])
	if err != nil {
		return nil, fmt.Errorf("admin created_at: %w", err)
	}
	return &models.Admin{
		ID:        id,
		Email:     helpers.AsString(row["email"]),
		Password:  helpers.AsString(row["password"]),
		CreatedAt: createdAt,
	}, nil
}
