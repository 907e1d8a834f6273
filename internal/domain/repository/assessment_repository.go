package repository

import (
	"context"
	"time"

	"mentalwell/internal/domain/entity"

	"github.com/google/uuid"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *entity.SelfAssessment) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SelfAssessment, error)
}

type CompletedActivityRepository interface {
	Create(ctx context.Context, activity *entity.CompletedActivity) error
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.CompletedActivity, error)
}
