package usecase

import (
	"context"
	"testing"
	"time"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(recs []entity.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key
	}
	return out
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name    string
		profile dto.WellnessProfile
		keys    []string
		focus   []string
	}{
		{
			name:    "default profile",
			profile: DefaultProfile,
			keys:    []string{"desk-stretches", "mindful-break"},
			focus:   []string{},
		},
		{
			name:    "everything low",
			profile: dto.WellnessProfile{Mood: 3, Stress: 9, Energy: 2, Sleep: 2},
			keys:    []string{"stress-breathing", "mood-boost", "energy-boost", "sleep-hygiene", "desk-stretches", "mindful-break"},
			focus:   []string{"Gestión del Estrés", "Aumento de Energía", "Mejora del Ánimo", "Calidad del Sueño"},
		},
		{
			name:    "thresholds are inclusive",
			profile: dto.WellnessProfile{Mood: 7, Stress: 6, Energy: 5, Sleep: 7},
			keys:    []string{"stress-breathing", "energy-boost", "desk-stretches", "mindful-break"},
			focus:   []string{"Gestión del Estrés", "Aumento de Energía"},
		},
		{
			name:    "tired and sleeping badly",
			profile: dto.WellnessProfile{Mood: 8, Stress: 2, Energy: 3, Sleep: 4},
			keys:    []string{"energy-boost", "sleep-hygiene", "desk-stretches", "mindful-break"},
			focus:   []string{"Aumento de Energía", "Calidad del Sueño"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.keys, keys(Recommend(tt.profile))); diff != "" {
				t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.focus, FocusAreas(tt.profile))
		})
	}
}

func newRecommendationUsecase(records *testutil.RecordStore, activities *testutil.ActivityStore, audit *testutil.AuditRecorder) *recommendationUsecase {
	uc := NewRecommendationUsecase(testutil.Logger(), records, activities, audit).(*recommendationUsecase)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestRecommendationsUseLatestRecordAndOverrides(t *testing.T) {
	uid := uuid.New()
	records := &testutil.RecordStore{}
	r := entity.EmotionalRecord{UserID: uid, Date: daysAgo(1), Mood: 4, Stress: 8, Energy: 7, Sleep: 8}
	require.NoError(t, records.Create(context.Background(), &r))
	uc := newRecommendationUsecase(records, &testutil.ActivityStore{}, &testutil.AuditRecorder{})

	resp, err := uc.Recommendations(context.Background(), uid, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.WellnessProfile{Mood: 4, Stress: 8, Energy: 7, Sleep: 8}, resp.Profile)
	assert.Equal(t, []string{"stress-breathing", "mood-boost", "desk-stretches", "mindful-break"}, keys(resp.Recommendations))

	calm := 2
	resp, err = uc.Recommendations(context.Background(), uid, &dto.RecommendationQuery{Stress: &calm})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Profile.Stress)
	assert.Equal(t, 4, resp.Profile.Mood)
	assert.Equal(t, []string{"Mejora del Ánimo"}, resp.FocusAreas)
}

func TestRecommendationsWithoutRecordUseDefaults(t *testing.T) {
	uc := newRecommendationUsecase(&testutil.RecordStore{}, &testutil.ActivityStore{}, &testutil.AuditRecorder{})

	resp, err := uc.Recommendations(context.Background(), uuid.New(), &dto.RecommendationQuery{})
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, resp.Profile)
}

func TestCompleteMarksActivityForADay(t *testing.T) {
	uid := uuid.New()
	activities := &testutil.ActivityStore{}
	audit := &testutil.AuditRecorder{}
	uc := newRecommendationUsecase(&testutil.RecordStore{}, activities, audit)
	ctx := context.Background()

	done, err := uc.Complete(ctx, uid, "desk-stretches")
	require.NoError(t, err)
	assert.Equal(t, "desk-stretches", done.Key)
	assert.Equal(t, entity.PriorityMedium, done.Priority)
	assert.Equal(t, []string{entity.AuditActionActivityDone}, audit.Actions())

	resp, err := uc.Recommendations(ctx, uid, nil)
	require.NoError(t, err)
	for _, rec := range resp.Recommendations {
		assert.Equal(t, rec.Key == "desk-stretches", rec.Completed, rec.Key)
	}

	uc.now = func() time.Time { return fixedNow.Add(completionWindow + time.Minute) }
	resp, err = uc.Recommendations(ctx, uid, nil)
	require.NoError(t, err)
	for _, rec := range resp.Recommendations {
		assert.False(t, rec.Completed, rec.Key)
	}

	_, err = uc.Complete(ctx, uid, "levitation")
	assert.ErrorIs(t, err, ErrUnknownRecommendation)
}
