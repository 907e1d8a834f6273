package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateRecordRequest struct {
	Date     string   `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Mood     int      `json:"mood" validate:"required,gte=1,lte=10"`
	Stress   int      `json:"stress" validate:"required,gte=1,lte=10"`
	Energy   int      `json:"energy" validate:"required,gte=1,lte=10"`
	Sleep    int      `json:"sleep" validate:"required,gte=1,lte=10"`
	Emotions []string `json:"emociones" validate:"max=20,dive,required,max=50"`
	Notes    string   `json:"notas" validate:"max=2000"`
}

type RecordResponse struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"fecha"`
	Mood      int       `json:"mood"`
	Stress    int       `json:"stress"`
	Energy    int       `json:"energy"`
	Sleep     int       `json:"sleep"`
	Emotions  []string  `json:"emociones"`
	Notes     string    `json:"notas,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyMetric is one point of the weekly chart, on a 0-100 scale.
type DailyMetric struct {
	Date   string `json:"fecha"`
	Day    string `json:"day"`
	Mood   int    `json:"mood"`
	Stress int    `json:"stress"`
}

type PatientDashboardResponse struct {
	User           *UserResponse    `json:"user"`
	LatestRecord   *RecordResponse  `json:"latest_record"`
	HasTodayRecord bool             `json:"has_today_record"`
	MoodScore      int              `json:"mood_score"`
	StressLevel    int              `json:"stress_level"`
	WeeklyProgress *decimal.Decimal `json:"weekly_progress"`
	WeeklyTrend    string           `json:"weekly_trend,omitempty"`
	WeeklyStats    []DailyMetric    `json:"weekly_stats"`
	WellnessStreak int              `json:"wellness_streak"`
	TotalRecords   int              `json:"total_records"`
}

type PatientSummary struct {
	Patient        *UserResponse   `json:"patient"`
	LatestRecord   *RecordResponse `json:"latest_record"`
	NeedsAttention bool            `json:"needs_attention"`
}

type PsychologistDashboardResponse struct {
	Psychologist   *UserResponse    `json:"psychologist"`
	Patients       []PatientSummary `json:"patients"`
	TotalPatients  int              `json:"total_patients"`
	NeedsAttention int              `json:"needs_attention"`
	RecordsToday   int              `json:"records_today"`
	AverageMood    *decimal.Decimal `json:"average_mood"`
}
