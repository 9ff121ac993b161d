package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	appServices "github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/config"
)

// CreateDefaultAdmin adds the configured default administrator when the admin
// table is empty. Nothing happens unless both email and password are set.
func CreateDefaultAdmin(ctx context.Context, adminService appServices.AdminService, cfg *config.Config, lgr zerolog.Logger) error {
	email := cfg.Auth.DefaultAdminEmail
	password := cfg.Auth.DefaultAdminPassword
	if email == "" || password == "" {
		lgr.Debug().Msg("No default administrator configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	created, err := adminService.EnsureDefaultAdmin(ctx, email, password)
	if err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating default administrator")
		return err
	}
	if created {
		lgr.Info().Str("email", email).Msg("Default administrator created")
	} else {
		lgr.Info().Msg("Administrators already present, skipping default administrator")
	}
	return nil
}
