package dto

import (
	"time"

	"mentalwell/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AssessmentOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type AssessmentQuestion struct {
	ID       int                `json:"id"`
	Category string             `json:"category"`
	Question string             `json:"question"`
	Options  []AssessmentOption `json:"options"`
}

// SubmitAssessmentRequest maps question id to the chosen option value.
type SubmitAssessmentRequest struct {
	Answers map[int]int `json:"answers" validate:"required"`
}

type CategoryScore struct {
	Category   string          `json:"category"`
	Score      int             `json:"score"`
	MaxScore   int             `json:"max_score"`
	Percentage decimal.Decimal `json:"percentage"`
}

type AssessmentResultResponse struct {
	ID          uuid.UUID        `json:"id"`
	TotalScore  int              `json:"total_score"`
	MaxScore    int              `json:"max_score"`
	Percentage  decimal.Decimal  `json:"percentage"`
	Level       entity.RiskLevel `json:"level"`
	Description string           `json:"description"`
	Categories  []CategoryScore  `json:"categories"`
	TakenAt     time.Time        `json:"taken_at"`
}
