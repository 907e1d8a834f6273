package repository

import (
	"context"
	"errors"
	"time"

	"mentalwell/internal/domain/entity"
	domainRepo "mentalwell/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type emotionalRecordRepository struct {
	db *gorm.DB
}

func NewEmotionalRecordRepository(db *gorm.DB) domainRepo.EmotionalRecordRepository {
	return &emotionalRecordRepository{db: db}
}

func (r *emotionalRecordRepository) Create(ctx context.Context, record *entity.EmotionalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *emotionalRecordRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.EmotionalRecord, error) {
	var record entity.EmotionalRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND fecha = ?", userID, entity.Day(date)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *emotionalRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.EmotionalRecord, error) {
	var records []entity.EmotionalRecord
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		query = query.Where("fecha >= ?", entity.Day(since))
	}
	if err := query.Order("fecha ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *emotionalRecordRepository) Latest(ctx context.Context, userID uuid.UUID) (*entity.EmotionalRecord, error) {
	var record entity.EmotionalRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("fecha DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *emotionalRecordRepository) LatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]entity.EmotionalRecord, error) {
	latest := make(map[uuid.UUID]entity.EmotionalRecord, len(userIDs))
	if len(userIDs) == 0 {
		return latest, nil
	}

	var records []entity.EmotionalRecord
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (user_id) * FROM emotional_records
			WHERE user_id IN ? ORDER BY user_id, fecha DESC`, userIDs).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		latest[record.UserID] = record
	}
	return latest, nil
}

func (r *emotionalRecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.EmotionalRecord{}).Count(&count).Error
	return count, err
}
