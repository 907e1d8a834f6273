package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "bajo"
	RiskModerate RiskLevel = "moderado"
	RiskHigh     RiskLevel = "alto"
)

const AssessmentKindSelfDiagnosis = "autodiagnostico"

// SelfAssessment stores one completed questionnaire.
type SelfAssessment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind       string          `gorm:"column:tipo;type:varchar(50);not null" json:"tipo"`
	TakenAt    time.Time       `gorm:"column:fecha;autoCreateTime" json:"fecha"`
	Answers    map[int]int     `gorm:"column:respuestas;type:jsonb;serializer:json;not null" json:"respuestas"`
	TotalScore int             `gorm:"column:puntuacion_total" json:"puntuacion_total"`
	Percentage decimal.Decimal `gorm:"column:porcentaje;type:decimal(5,2)" json:"porcentaje"`
	RiskLevel  RiskLevel       `gorm:"column:nivel_riesgo;type:varchar(20)" json:"nivel_riesgo"`
}

func (SelfAssessment) TableName() string {
	return "assessments"
}
