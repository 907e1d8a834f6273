package repository

import (
	"context"
	"time"

	"mentalwell/internal/domain/entity"
	domainRepo "mentalwell/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) domainRepo.AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *entity.SelfAssessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SelfAssessment, error) {
	var assessments []entity.SelfAssessment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("fecha DESC").
		Limit(limit).
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

type completedActivityRepository struct {
	db *gorm.DB
}

func NewCompletedActivityRepository(db *gorm.DB) domainRepo.CompletedActivityRepository {
	return &completedActivityRepository{db: db}
}

func (r *completedActivityRepository) Create(ctx context.Context, activity *entity.CompletedActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *completedActivityRepository) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.CompletedActivity, error) {
	var activities []entity.CompletedActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND fecha_completada >= ?", userID, since).
		Order("fecha_completada ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
