package repository

import (
	"context"
	"time"

	"mentalwell/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionRepository whitelists issued session pointers so they can be
// revoked before they expire.
type SessionRepository interface {
	Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID, tokenID string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// AnalysisCache keeps the last analysis report. Get returns nil, nil on a miss.
type AnalysisCache interface {
	Get(ctx context.Context) (*entity.AnalysisReport, error)
	Set(ctx context.Context, report *entity.AnalysisReport, ttl time.Duration) error
}

// SystemConfigRepository stores administrator settings. Get returns nil, nil
// when nothing was saved yet.
type SystemConfigRepository interface {
	Get(ctx context.Context) (*entity.SystemConfig, error)
	Save(ctx context.Context, cfg *entity.SystemConfig) error
}
