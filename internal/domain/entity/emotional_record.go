package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmotionalRecord is one daily self-report. A user owns at most one per day.
type EmotionalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uidx_emotional_records_user_fecha" json:"user_id"`
	Date      time.Time `gorm:"column:fecha;type:date;not null;uniqueIndex:uidx_emotional_records_user_fecha" json:"fecha"`
	Mood      int       `gorm:"not null" json:"mood"`
	Stress    int       `gorm:"not null" json:"stress"`
	Energy    int       `gorm:"not null" json:"energy"`
	Sleep     int       `gorm:"not null" json:"sleep"`
	Emotions  []string  `gorm:"column:emociones;type:jsonb;serializer:json" json:"emociones"`
	Notes     string    `gorm:"column:notas;type:text" json:"notas,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (EmotionalRecord) TableName() string {
	return "emotional_records"
}

// Metric bounds for mood, stress, energy and sleep
const (
	MetricMin = 1
	MetricMax = 10
)

// Day truncates t to its calendar day in UTC. Record days, "today" and the
// weekly windows are all UTC calendar days, whatever the client's zone.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
