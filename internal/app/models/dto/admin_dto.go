package dto

import (
	"time"

	"github.com/yigit/campus/internal/app/models"
)

// CreateAdminRequest creates another administrator account
type CreateAdminRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UpdateAdminRequest changes an administrator's email and optionally the password.
// An empty password keeps the current one.
type UpdateAdminRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password"`
}

// AdminResponse is an administrator without the password digest
type AdminResponse struct {
	ID        int64     `json:"id" example:"1"`
	Email     string    `json:"email" example:"admin@campus.edu"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-01T10:00:00Z"`
}

// NewAdminResponse converts the model
func NewAdminResponse(admin *models.Admin) AdminResponse {
	return AdminResponse{
		ID:        admin.ID,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
	}
}

// NewAdminResponses converts a list of models
func NewAdminResponses(admins []*models.Admin) []AdminResponse {
	out := make([]AdminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, NewAdminResponse(a))
	}
	return out
}
