package converter

import (
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
)

func RecordToResponse(record *entity.EmotionalRecord) *dto.RecordResponse {
	if record == nil {
		return nil
	}

	emotions := record.Emotions
	if emotions == nil {
		emotions = []string{}
	}

	return &dto.RecordResponse{
		ID:        record.ID,
		Date:      record.Date.Format(dateLayout),
		Mood:      record.Mood,
		Stress:    record.Stress,
		Energy:    record.Energy,
		Sleep:     record.Sleep,
		Emotions:  emotions,
		Notes:     record.Notes,
		CreatedAt: record.CreatedAt,
	}
}

func RecordsToResponses(records []entity.EmotionalRecord) []dto.RecordResponse {
	responses := make([]dto.RecordResponse, len(records))
	for i := range records {
		responses[i] = *RecordToResponse(&records[i])
	}
	return responses
}

func CompletedActivityToResponse(activity *entity.CompletedActivity) *dto.CompletedActivityResponse {
	if activity == nil {
		return nil
	}

	return &dto.CompletedActivityResponse{
		Key:         activity.Key,
		Title:       activity.Title,
		Priority:    activity.Priority,
		CompletedAt: activity.CompletedAt,
	}
}
