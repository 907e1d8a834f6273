package entity

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities; higher ranks sort first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Recommendation is produced by the rule table; it is not persisted.
type Recommendation struct {
	Key           string   `json:"id"`
	Kind          string   `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Duration      string   `json:"duration"`
	Difficulty    string   `json:"difficulty"`
	Effectiveness int      `json:"effectiveness"`
	Priority      Priority `json:"priority"`
	Completed     bool     `json:"completed"`
}

// CompletedActivity records that a user finished a recommended activity.
type CompletedActivity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Key         string    `gorm:"column:clave;type:varchar(50);not null" json:"clave"`
	Kind        string    `gorm:"column:tipo;type:varchar(50);not null" json:"tipo"`
	Title       string    `gorm:"column:titulo;type:varchar(255);not null" json:"titulo"`
	Priority    Priority  `gorm:"column:prioridad;type:varchar(10)" json:"prioridad"`
	Completed   bool      `gorm:"column:completada;not null;default:true" json:"completada"`
	CompletedAt time.Time `gorm:"column:fecha_completada" json:"fecha_completada"`
}

func (CompletedActivity) TableName() string {
	return "recommendations"
}
