package repository

import (
	"context"
	"errors"
	"time"

	"mentalwell/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotFound is returned by mutations that matched no row. Lookups return
// nil, nil instead.
var ErrNotFound = errors.New("record not found")

// UserRepository is the credential store. Every method reports store
// failures as errors distinct from "not found".
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string, activeOnly bool) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByRole returns the active users of a role.
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	ListAll(ctx context.Context) ([]entity.User, error)
	CountActiveByRole(ctx context.Context, role entity.Role) (int64, error)
	CountByStatus(ctx context.Context, active bool) (int64, error)
	CountRegisteredSince(ctx context.Context, since time.Time) (int64, error)
}
