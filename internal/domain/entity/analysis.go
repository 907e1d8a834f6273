package entity

import (
	"encoding/json"
	"time"
)

// AnalysisReport relays the external analysis output. Each section is nil
// when the collaborator did not produce it.
type AnalysisReport struct {
	Predictions     json.RawMessage `json:"predictions"`
	Insights        json.RawMessage `json:"insights"`
	WeeklyTrends    json.RawMessage `json:"weekly_trends"`
	MoodPatterns    json.RawMessage `json:"mood_patterns"`
	UserClusters    json.RawMessage `json:"user_clusters"`
	Recommendations json.RawMessage `json:"recommendations"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// Empty reports whether no section carries data.
func (r *AnalysisReport) Empty() bool {
	return r.Predictions == nil && r.Insights == nil && r.WeeklyTrends == nil &&
		r.MoodPatterns == nil && r.UserClusters == nil && r.Recommendations == nil
}
