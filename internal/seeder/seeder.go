// Package seeder bootstraps the initial admin account at startup.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inkwell/internal/auth/models"
	"inkwell/internal/platform/config"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
	"inkwell/pkg/requestcontext"
	s "inkwell/pkg/string"
)

// UserStore defines methods for seeding users
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Seeder creates the configured admin account if it does not exist yet.
type Seeder struct {
	users  UserStore
	hasher PasswordHasher
	logger *slog.Logger
}

// New creates a new seeder
func New(users UserStore, hasher PasswordHasher, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// SeedAdmin is idempotent: an existing account with the admin email is left
// untouched, whatever its role.
func (sd *Seeder) SeedAdmin(ctx context.Context, seed config.AdminSeed) error {
	if !seed.Enabled() {
		sd.logger.Debug("admin seeding disabled")
		return nil
	}
	email := s.NormalizeEmail(seed.Email)

	existing, err := sd.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			sd.logger.Warn("seed admin email belongs to a non-admin account",
				"user_id", existing.ID.String(),
			)
		}
		return nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if len([]rune(seed.Password)) < models.MinPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", models.MinPasswordLength)
	}
	hash, err := sd.hasher.Hash(seed.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		Name:         seed.Name,
		Role:         id.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := sd.users.Insert(ctx, admin); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil
		}
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	sd.logger.Info("admin account seeded",
		"user_id", admin.ID.String(),
	)
	return nil
}
