package dto

import (
	"time"

	"mentalwell/internal/domain/entity"
)

// RecommendationQuery overrides the metrics taken from the latest record.
type RecommendationQuery struct {
	Mood   *int `validate:"omitempty,gte=1,lte=10"`
	Stress *int `validate:"omitempty,gte=1,lte=10"`
	Energy *int `validate:"omitempty,gte=1,lte=10"`
	Sleep  *int `validate:"omitempty,gte=1,lte=10"`
}

type WellnessProfile struct {
	Mood   int `json:"mood"`
	Stress int `json:"stress"`
	Energy int `json:"energy"`
	Sleep  int `json:"sleep"`
}

type RecommendationsResponse struct {
	Profile         WellnessProfile         `json:"profile"`
	FocusAreas      []string                `json:"focus_areas"`
	Recommendations []entity.Recommendation `json:"recommendations"`
}

type CompletedActivityResponse struct {
	Key         string          `json:"id"`
	Title       string          `json:"title"`
	Priority    entity.Priority `json:"priority"`
	CompletedAt time.Time       `json:"completed_at"`
}
