package models

import (
	"time"
)

// Admin defines the administrator model based on the 'admin' table
type Admin struct {
	ID        int64     `json:"id" db:"id" example:"1"`                                   // Auto-assigned identifier
	Email     string    `json:"email" db:"email" example:"admin@campus.edu"`              // Login key, unique
	Password  string    `json:"-" db:"password"`                                          // bcrypt digest (excluded from JSON)
	CreatedAt time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Set once at insert
}
