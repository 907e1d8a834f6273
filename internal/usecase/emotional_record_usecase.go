package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrRecordAlreadyExists = errors.New("an emotional record already exists for this date")
	ErrFutureDate          = errors.New("records cannot be dated in the future")
	ErrPatientNotFound     = errors.New("patient not found")
)

const (
	TrendImproving = "mejorando"
	TrendWorsening = "empeorando"

	wellnessMoodThreshold = 7
	attentionStress       = 8
	attentionMood         = 3
	inactivityDays        = 7
)

var dayNames = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

type EmotionalRecordUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateRecordRequest) (*dto.RecordResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]dto.RecordResponse, error)
	PatientDashboard(ctx context.Context, user *entity.User) (*dto.PatientDashboardResponse, error)
	PsychologistDashboard(ctx context.Context, psychologist *entity.User) (*dto.PsychologistDashboardResponse, error)
	ListPatients(ctx context.Context) ([]dto.PatientSummary, error)
	PatientRecords(ctx context.Context, patientID uuid.UUID) ([]dto.RecordResponse, error)
}

type emotionalRecordUsecase struct {
	log        *logrus.Logger
	recordRepo repository.EmotionalRecordRepository
	userRepo   repository.UserRepository
	audit      service.AuditService
	now        func() time.Time
}

func NewEmotionalRecordUsecase(
	log *logrus.Logger,
	recordRepo repository.EmotionalRecordRepository,
	userRepo repository.UserRepository,
	audit service.AuditService,
) EmotionalRecordUsecase {
	return &emotionalRecordUsecase{
		log:        log,
		recordRepo: recordRepo,
		userRepo:   userRepo,
		audit:      audit,
		now:        time.Now,
	}
}

// Create stores the record for the given day, today by default. A user owns
// at most one record per day; the unique index backs the pre-check when two
// requests race.
func (u *emotionalRecordUsecase) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateRecordRequest) (*dto.RecordResponse, error) {
	today := entity.Day(u.now())
	date := today
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		date = entity.Day(parsed)
	}
	if date.After(today) {
		return nil, ErrFutureDate
	}

	existing, err := u.recordRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		u.log.Warnf("Failed to find emotional record: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrRecordAlreadyExists
	}

	emotions := make([]string, 0, len(req.Emotions))
	for _, e := range req.Emotions {
		if e = strings.TrimSpace(e); e != "" {
			emotions = append(emotions, e)
		}
	}

	record := &entity.EmotionalRecord{
		UserID:   userID,
		Date:     date,
		Mood:     req.Mood,
		Stress:   req.Stress,
		Energy:   req.Energy,
		Sleep:    req.Sleep,
		Emotions: emotions,
		Notes:    strings.TrimSpace(req.Notes),
	}

	if err := u.recordRepo.Create(ctx, record); err != nil {
		if isDuplicateKeyError(err, "user_fecha") {
			return nil, ErrRecordAlreadyExists
		}
		u.log.Warnf("Failed to create emotional record: %+v", err)
		return nil, err
	}

	u.audit.LogCreate(ctx, &userID, entity.AuditActionRecordCreate, "emotional_record", record.ID.String(), map[string]interface{}{
		"fecha": record.Date.Format("2006-01-02"),
	})

	return converter.RecordToResponse(record), nil
}

func (u *emotionalRecordUsecase) List(ctx context.Context, userID uuid.UUID) ([]dto.RecordResponse, error) {
	records, err := u.recordRepo.ListByUser(ctx, userID, time.Time{})
	if err != nil {
		u.log.Warnf("Failed to list emotional records: %+v", err)
		return nil, err
	}
	return converter.RecordsToResponses(records), nil
}

func (u *emotionalRecordUsecase) PatientDashboard(ctx context.Context, user *entity.User) (*dto.PatientDashboardResponse, error) {
	records, err := u.recordRepo.ListByUser(ctx, user.ID, time.Time{})
	if err != nil {
		u.log.Warnf("Failed to list emotional records: %+v", err)
		return nil, err
	}

	dashboard := BuildPatientDashboard(records, u.now())
	dashboard.User = converter.UserToResponse(user)
	return dashboard, nil
}

func (u *emotionalRecordUsecase) PsychologistDashboard(ctx context.Context, psychologist *entity.User) (*dto.PsychologistDashboardResponse, error) {
	patients, err := u.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	today := entity.Day(u.now())
	dashboard := &dto.PsychologistDashboardResponse{
		Psychologist:  converter.UserToResponse(psychologist),
		Patients:      patients,
		TotalPatients: len(patients),
	}

	moodSum, moodCount := int64(0), int64(0)
	for _, p := range patients {
		if p.NeedsAttention {
			dashboard.NeedsAttention++
		}
		if p.LatestRecord == nil {
			continue
		}
		if p.LatestRecord.Date == today.Format("2006-01-02") {
			dashboard.RecordsToday++
		}
		moodSum += int64(p.LatestRecord.Mood)
		moodCount++
	}
	if moodCount > 0 {
		avg := decimal.NewFromInt(moodSum).Div(decimal.NewFromInt(moodCount)).Round(1)
		dashboard.AverageMood = &avg
	}

	return dashboard, nil
}

// ListPatients returns the active patients with their latest record.
func (u *emotionalRecordUsecase) ListPatients(ctx context.Context) ([]dto.PatientSummary, error) {
	patients, err := u.userRepo.ListByRole(ctx, entity.RolePatient)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	ids := make([]uuid.UUID, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}

	latest, err := u.recordRepo.LatestForUsers(ctx, ids)
	if err != nil {
		u.log.Warnf("Failed to load latest records: %+v", err)
		return nil, err
	}

	today := entity.Day(u.now())
	summaries := make([]dto.PatientSummary, len(patients))
	for i := range patients {
		summary := dto.PatientSummary{Patient: converter.UserToResponse(&patients[i])}
		if record, ok := latest[patients[i].ID]; ok {
			summary.LatestRecord = converter.RecordToResponse(&record)
			summary.NeedsAttention = needsAttention(&record, today)
		}
		summaries[i] = summary
	}
	return summaries, nil
}

func (u *emotionalRecordUsecase) PatientRecords(ctx context.Context, patientID uuid.UUID) ([]dto.RecordResponse, error) {
	patient, err := u.userRepo.FindByID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, err
	}
	if patient == nil || patient.Role != entity.RolePatient || !patient.Active() {
		return nil, ErrPatientNotFound
	}
	return u.List(ctx, patientID)
}

// BuildPatientDashboard derives the patient dashboard from records sorted by
// date ascending.
func BuildPatientDashboard(records []entity.EmotionalRecord, now time.Time) *dto.PatientDashboardResponse {
	today := entity.Day(now)
	dashboard := &dto.PatientDashboardResponse{
		TotalRecords: len(records),
		WeeklyStats:  weeklyStats(records, today),
	}
	if len(records) == 0 {
		return dashboard
	}

	latest := records[len(records)-1]
	dashboard.LatestRecord = converter.RecordToResponse(&latest)
	dashboard.HasTodayRecord = latest.Date.Equal(today)
	dashboard.MoodScore = latest.Mood * 10
	dashboard.StressLevel = latest.Stress * 10

	var current, previous []int
	for _, r := range records {
		diff := int(today.Sub(entity.Day(r.Date)).Hours() / 24)
		switch {
		case diff <= 6:
			current = append(current, r.Mood)
		case diff <= 13:
			previous = append(previous, r.Mood)
		}
	}

	// No previous week means no comparison, not a 100% gain.
	if avgPrevious := average(previous); avgPrevious.IsPositive() {
		progress := average(current).Sub(avgPrevious).Div(avgPrevious).Mul(decimal.NewFromInt(100))
		rounded := progress.Round(0)
		dashboard.WeeklyProgress = &rounded
		if progress.IsNegative() {
			dashboard.WeeklyTrend = TrendWorsening
		} else {
			dashboard.WeeklyTrend = TrendImproving
		}
	}

	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Mood < wellnessMoodThreshold {
			break
		}
		dashboard.WellnessStreak++
	}

	return dashboard
}

// weeklyStats averages mood and stress per day over the last seven days,
// oldest first, on a 0-100 scale. Days without records score 0.
func weeklyStats(records []entity.EmotionalRecord, today time.Time) []dto.DailyMetric {
	stats := make([]dto.DailyMetric, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)

		var moods, stresses []int
		for _, r := range records {
			if entity.Day(r.Date).Equal(day) {
				moods = append(moods, r.Mood)
				stresses = append(stresses, r.Stress)
			}
		}

		stats = append(stats, dto.DailyMetric{
			Date:   day.Format("2006-01-02"),
			Day:    dayNames[day.Weekday()],
			Mood:   int(average(moods).Mul(decimal.NewFromInt(10)).Round(0).IntPart()),
			Stress: int(average(stresses).Mul(decimal.NewFromInt(10)).Round(0).IntPart()),
		})
	}
	return stats
}

func average(values []int) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := int64(0)
	for _, v := range values {
		sum += int64(v)
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(values))))
}

func needsAttention(latest *entity.EmotionalRecord, today time.Time) bool {
	if latest.Stress >= attentionStress || latest.Mood <= attentionMood {
		return true
	}
	return today.Sub(entity.Day(latest.Date)) > inactivityDays*24*time.Hour
}
