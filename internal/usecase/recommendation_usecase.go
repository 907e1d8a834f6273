package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrUnknownRecommendation = errors.New("unknown recommendation")

// An activity counts as completed for a day after it is marked done.
const completionWindow = 24 * time.Hour

// DefaultProfile is used when the caller has no record and passes no metrics.
var DefaultProfile = dto.WellnessProfile{Mood: 7, Stress: 4, Energy: 6, Sleep: 7}

type rule struct {
	applies        func(p dto.WellnessProfile) bool
	recommendation entity.Recommendation
}

func always(dto.WellnessProfile) bool { return true }

// rules is evaluated top to bottom; the sort after evaluation is stable so
// equal priorities keep this order.
var rules = []rule{
	{
		applies: func(p dto.WellnessProfile) bool { return p.Stress >= 6 },
		recommendation: entity.Recommendation{
			Key: "stress-breathing", Kind: "Respiración", Title: "Técnica de Respiración 4-7-8",
			Description: "Reduce el estrés inmediatamente con esta técnica de respiración profunda",
			Duration:    "5 min", Difficulty: "Fácil", Effectiveness: 95, Priority: entity.PriorityHigh,
		},
	},
	{
		applies: func(p dto.WellnessProfile) bool { return p.Energy <= 5 },
		recommendation: entity.Recommendation{
			Key: "energy-boost", Kind: "Movimiento", Title: "Rutina Energizante de 10 Minutos",
			Description: "Ejercicios suaves para aumentar tu energía sin agotarte",
			Duration:    "10 min", Difficulty: "Fácil", Effectiveness: 88, Priority: entity.PriorityMedium,
		},
	},
	{
		applies: func(p dto.WellnessProfile) bool { return p.Mood <= 6 },
		recommendation: entity.Recommendation{
			Key: "mood-boost", Kind: "Mindfulness", Title: "Meditación de Gratitud",
			Description: "Practica la gratitud para mejorar tu estado de ánimo y perspectiva",
			Duration:    "15 min", Difficulty: "Fácil", Effectiveness: 92, Priority: entity.PriorityHigh,
		},
	},
	{
		applies: func(p dto.WellnessProfile) bool { return p.Sleep <= 6 },
		recommendation: entity.Recommendation{
			Key: "sleep-hygiene", Kind: "Sueño", Title: "Rutina de Relajación Nocturna",
			Description: "Prepara tu mente y cuerpo para un sueño reparador",
			Duration:    "20 min", Difficulty: "Fácil", Effectiveness: 85, Priority: entity.PriorityMedium,
		},
	},
	{
		applies: always,
		recommendation: entity.Recommendation{
			Key: "mindful-break", Kind: "Mindfulness", Title: "Pausa Mindful de 3 Minutos",
			Description: "Una breve práctica de atención plena para reconectar contigo mismo",
			Duration:    "3 min", Difficulty: "Muy Fácil", Effectiveness: 78, Priority: entity.PriorityLow,
		},
	},
	{
		applies: always,
		recommendation: entity.Recommendation{
			Key: "desk-stretches", Kind: "Movimiento", Title: "Estiramientos en el Escritorio",
			Description: "Alivia la tensión muscular sin levantarte de tu lugar de trabajo",
			Duration:    "7 min", Difficulty: "Muy Fácil", Effectiveness: 82, Priority: entity.PriorityMedium,
		},
	},
}

// Recommend applies the rule table to p and orders the result high > medium > low.
func Recommend(p dto.WellnessProfile) []entity.Recommendation {
	var recs []entity.Recommendation
	for _, r := range rules {
		if r.applies(p) {
			recs = append(recs, r.recommendation)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() > recs[j].Priority.Rank()
	})
	return recs
}

// FocusAreas names what the recommendations concentrate on.
func FocusAreas(p dto.WellnessProfile) []string {
	areas := []string{}
	if p.Stress >= 6 {
		areas = append(areas, "Gestión del Estrés")
	}
	if p.Energy <= 5 {
		areas = append(areas, "Aumento de Energía")
	}
	if p.Mood <= 6 {
		areas = append(areas, "Mejora del Ánimo")
	}
	if p.Sleep <= 6 {
		areas = append(areas, "Calidad del Sueño")
	}
	return areas
}

func findRule(key string) (entity.Recommendation, bool) {
	for _, r := range rules {
		if r.recommendation.Key == key {
			return r.recommendation, true
		}
	}
	return entity.Recommendation{}, false
}

type RecommendationUsecase interface {
	Recommendations(ctx context.Context, userID uuid.UUID, query *dto.RecommendationQuery) (*dto.RecommendationsResponse, error)
	Complete(ctx context.Context, userID uuid.UUID, key string) (*dto.CompletedActivityResponse, error)
}

type recommendationUsecase struct {
	log          *logrus.Logger
	recordRepo   repository.EmotionalRecordRepository
	activityRepo repository.CompletedActivityRepository
	audit        service.AuditService
	now          func() time.Time
}

func NewRecommendationUsecase(
	log *logrus.Logger,
	recordRepo repository.EmotionalRecordRepository,
	activityRepo repository.CompletedActivityRepository,
	audit service.AuditService,
) RecommendationUsecase {
	return &recommendationUsecase{
		log:          log,
		recordRepo:   recordRepo,
		activityRepo: activityRepo,
		audit:        audit,
		now:          time.Now,
	}
}

// Recommendations builds the profile from the latest record, lets query
// override single metrics, and marks activities completed in the last day.
func (u *recommendationUsecase) Recommendations(ctx context.Context, userID uuid.UUID, query *dto.RecommendationQuery) (*dto.RecommendationsResponse, error) {
	profile := DefaultProfile

	latest, err := u.recordRepo.Latest(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to load latest record: %+v", err)
		return nil, err
	}
	if latest != nil {
		profile = dto.WellnessProfile{Mood: latest.Mood, Stress: latest.Stress, Energy: latest.Energy, Sleep: latest.Sleep}
	}

	if query != nil {
		override(&profile.Mood, query.Mood)
		override(&profile.Stress, query.Stress)
		override(&profile.Energy, query.Energy)
		override(&profile.Sleep, query.Sleep)
	}

	completed, err := u.activityRepo.ListByUserSince(ctx, userID, u.now().Add(-completionWindow))
	if err != nil {
		u.log.Warnf("Failed to list completed activities: %+v", err)
		return nil, err
	}
	done := make(map[string]bool, len(completed))
	for _, c := range completed {
		done[c.Key] = true
	}

	recs := Recommend(profile)
	for i := range recs {
		recs[i].Completed = done[recs[i].Key]
	}

	return &dto.RecommendationsResponse{
		Profile:         profile,
		FocusAreas:      FocusAreas(profile),
		Recommendations: recs,
	}, nil
}

func (u *recommendationUsecase) Complete(ctx context.Context, userID uuid.UUID, key string) (*dto.CompletedActivityResponse, error) {
	rec, ok := findRule(key)
	if !ok {
		return nil, ErrUnknownRecommendation
	}

	activity := &entity.CompletedActivity{
		UserID:      userID,
		Key:         rec.Key,
		Kind:        rec.Kind,
		Title:       rec.Title,
		Priority:    rec.Priority,
		Completed:   true,
		CompletedAt: u.now().UTC(),
	}

	if err := u.activityRepo.Create(ctx, activity); err != nil {
		u.log.Warnf("Failed to store completed activity: %+v", err)
		return nil, err
	}

	u.audit.LogEvent(ctx, &userID, entity.AuditActionActivityDone, entity.JSON{"recommendation": rec.Key})
	return converter.CompletedActivityToResponse(activity), nil
}

func override(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}
