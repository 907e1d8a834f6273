package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"

	"github.com/google/uuid"
)

// SessionStore implements repository.SessionRepository in memory.
type SessionStore struct {
	mu   sync.Mutex
	keys map[string]time.Duration

	Err   error
	Delay time.Duration
}

var _ repository.SessionRepository = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{keys: make(map[string]time.Duration)}
}

func sessionKey(userID uuid.UUID, tokenID string) string {
	return userID.String() + ":" + tokenID
}

func (s *SessionStore) enter(ctx context.Context) error {
	s.mu.Lock()
	delay, err := s.Delay, s.Err
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Len returns the number of whitelisted pointers.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func (s *SessionStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[sessionKey(userID, tokenID)] = ttl
	return nil
}

func (s *SessionStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	if err := s.enter(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[sessionKey(userID, tokenID)]
	return ok, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, sessionKey(userID, tokenID))
	return nil
}

func (s *SessionStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.keys {
		if strings.HasPrefix(key, userID.String()+":") {
			delete(s.keys, key)
		}
	}
	return nil
}

// AuditRecorder implements service.AuditService and keeps the actions.
type AuditRecorder struct {
	mu      sync.Mutex
	entries []entity.AuditLog
}

var _ service.AuditService = (*AuditRecorder)(nil)

func (a *AuditRecorder) record(userID *uuid.UUID, action string, metadata entity.JSON) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entity.AuditLog{
		ID:        int64(len(a.entries) + 1),
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	})
}

// Actions lists the recorded actions in order.
func (a *AuditRecorder) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func (a *AuditRecorder) LogEvent(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON) {
	a.record(userID, action, metadata)
}

func (a *AuditRecorder) LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) {
	a.record(userID, action, entity.JSON{"entity": entityName, "entity_id": entityID})
}

func (a *AuditRecorder) LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) {
	a.record(userID, action, entity.JSON{"entity": entityName, "entity_id": entityID})
}

func (a *AuditRecorder) LogDelete(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) {
	a.record(userID, action, entity.JSON{"entity": entityName, "entity_id": entityID})
}

// Recent returns the newest entries first.
func (a *AuditRecorder) Recent(ctx context.Context, limit int) ([]entity.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []entity.AuditLog
	for i := len(a.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

// RecordStore implements repository.EmotionalRecordRepository.
type RecordStore struct {
	mu      sync.Mutex
	records []entity.EmotionalRecord

	Err error
}

var _ repository.EmotionalRecordRepository = (*RecordStore)(nil)

func (s *RecordStore) Create(ctx context.Context, record *entity.EmotionalRecord) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *RecordStore) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.EmotionalRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.UserID == userID && entity.Day(r.Date).Equal(entity.Day(date)) {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *RecordStore) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.EmotionalRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.EmotionalRecord
	for _, r := range s.records {
		if r.UserID == userID && (since.IsZero() || !r.Date.Before(since)) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *RecordStore) Latest(ctx context.Context, userID uuid.UUID) (*entity.EmotionalRecord, error) {
	records, err := s.ListByUser(ctx, userID, time.Time{})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	latest := records[len(records)-1]
	return &latest, nil
}

func (s *RecordStore) LatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]entity.EmotionalRecord, error) {
	out := make(map[uuid.UUID]entity.EmotionalRecord)
	for _, id := range userIDs {
		latest, err := s.Latest(ctx, id)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			out[id] = *latest
		}
	}
	return out, nil
}

func (s *RecordStore) Count(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

// AssessmentStore implements repository.AssessmentRepository.
type AssessmentStore struct {
	mu          sync.Mutex
	assessments []entity.SelfAssessment
}

var _ repository.AssessmentRepository = (*AssessmentStore)(nil)

func (s *AssessmentStore) Create(ctx context.Context, assessment *entity.SelfAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	if assessment.TakenAt.IsZero() {
		assessment.TakenAt = time.Now().UTC()
	}
	s.assessments = append(s.assessments, *assessment)
	return nil
}

// ListByUser returns the newest first.
func (s *AssessmentStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.SelfAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.SelfAssessment
	for i := len(s.assessments) - 1; i >= 0 && len(out) < limit; i-- {
		if s.assessments[i].UserID == userID {
			out = append(out, s.assessments[i])
		}
	}
	return out, nil
}

// ActivityStore implements repository.CompletedActivityRepository.
type ActivityStore struct {
	mu         sync.Mutex
	activities []entity.CompletedActivity
}

var _ repository.CompletedActivityRepository = (*ActivityStore)(nil)

func (s *ActivityStore) Create(ctx context.Context, activity *entity.CompletedActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *ActivityStore) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]entity.CompletedActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.CompletedActivity
	for _, a := range s.activities {
		if a.UserID == userID && !a.CompletedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ConfigStore implements repository.SystemConfigRepository.
type ConfigStore struct {
	mu  sync.Mutex
	cfg *entity.SystemConfig
}

var _ repository.SystemConfigRepository = (*ConfigStore)(nil)

func (s *ConfigStore) Get(ctx context.Context) (*entity.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return nil, nil
	}
	cp := *s.cfg
	return &cp, nil
}

func (s *ConfigStore) Save(ctx context.Context, cfg *entity.SystemConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cfg
	s.cfg = &cp
	return nil
}

// AnalysisCache implements repository.AnalysisCache.
type AnalysisCache struct {
	mu     sync.Mutex
	report *entity.AnalysisReport
	sets   int
}

var _ repository.AnalysisCache = (*AnalysisCache)(nil)

func (c *AnalysisCache) Get(ctx context.Context) (*entity.AnalysisReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report, nil
}

func (c *AnalysisCache) Set(ctx context.Context, report *entity.AnalysisReport, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
	c.sets++
	return nil
}

// Sets counts cache writes.
func (c *AnalysisCache) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}
