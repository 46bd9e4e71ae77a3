package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
)

// seedPasswordBytes is the number of random bytes for the seed admin password.
const seedPasswordBytes = 16

// SeedAdmin creates the initial admin account on first boot if the user
// directory is empty. The generated password is logged and must be
// changed immediately. Returns the generated password (empty string if
// seeding was skipped).
func SeedAdmin(ctx context.Context, userRepo UserRepository, email string, logger *logging.Logger) (string, error) {
	count, err := userRepo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}

	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return "", fmt.Errorf("seed admin email %q is malformed", email)
	}

	// Generate a random password
	passwordBytes := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(passwordBytes)

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Email:            email,
		FirstName:        "Platform",
		LastName:         "Admin",
		Role:             RoleAdmin,
		IsActive:         true,
		PasswordHash:     hash,
		Permissions:      PermissionsForRole(RoleAdmin),
		RegistrationDate: time.Now().UTC(),
		EmailVerified:    true,
		Preferences:      defaultPreferences(nil),
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seed admin account created",
		"email", email,
		"password", password,
		"action_required", "change this password immediately",
	)

	return password, nil
}
