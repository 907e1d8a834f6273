package repository

import (
	"context"
	"time"

	"mentalwell/internal/domain/entity"

	"github.com/google/uuid"
)

type EmotionalRecordRepository interface {
	Create(ctx context.Context, record *entity.EmotionalRecord) error
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.EmotionalRecord, error)
	// ListByUser returns records with fecha >= since, oldest first. A zero
	// since returns every record.
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.EmotionalRecord, error)
	Latest(ctx context.Context, userID uuid.UUID) (*entity.EmotionalRecord, error)
	LatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]entity.EmotionalRecord, error)
	Count(ctx context.Context) (int64, error)
}
