package database

import (
	"context"
	"errors"
	"fmt"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrSeedPasswordRequired = errors.New("SEED_PASSWORD is required to seed accounts")

// SeedAccounts are the staff accounts created by Seed.
var SeedAccounts = []entity.User{
	{
		Email:     "admin@mentalwell.com",
		FirstName: "Ana",
		LastName:  "Administradora",
		Phone:     "+34 600 000 001",
		Role:      entity.RoleAdmin,
	},
	{
		Email:         "psicologo@mentalwell.com",
		FirstName:     "Dr. Carlos",
		LastName:      "García",
		Phone:         "+34 600 000 002",
		Role:          entity.RolePsychologist,
		Specialty:     "Psicología Clínica",
		LicenseNumber: "COL-12345",
	},
}

// Seed creates the staff accounts that do not exist yet, all sharing password.
// It returns the number of accounts created.
func Seed(ctx context.Context, users repository.UserRepository, password string, log *logrus.Logger) (int, error) {
	if password == "" {
		return 0, ErrSeedPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash seed password: %w", err)
	}

	created := 0
	for _, account := range SeedAccounts {
		existing, err := users.FindByEmail(ctx, account.Email, false)
		if err != nil {
			return created, fmt.Errorf("failed to look up %s: %w", account.Email, err)
		}
		if existing != nil {
			log.Infof("Seed account %s already exists, skipping", account.Email)
			continue
		}

		user := account
		user.PasswordHash = string(hash)
		user.IsActive = entity.Bool(true)
		if err := users.Create(ctx, &user); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", account.Email, err)
		}
		created++
		log.Infof("Seed account %s created", account.Email)
	}

	return created, nil
}
