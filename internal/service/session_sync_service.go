package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mentalwell/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	sessionKeyPattern = "session:*"

	// SCAN hint and pipeline size per batch.
	syncBatchSize = 500

	defaultSweepInterval = 15 * time.Minute
)

// SessionSyncService reconciles the session whitelist in Redis with the user
// table. Pointers owned by deleted or deactivated users are dropped even when
// the revocation at the time of the change failed (Redis down, timeout).
//
// Every batch builds and executes its own pipeline so memory stays bounded
// on large keyspaces.
type SessionSyncService struct {
	db          *gorm.DB
	redisClient redis.UniversalClient
	log         *logrus.Logger
	interval    time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
	started  atomic.Bool
}

func NewSessionSyncService(db *gorm.DB, redisClient redis.UniversalClient, log *logrus.Logger, interval time.Duration) *SessionSyncService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SessionSyncService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start runs a sweep on every interval tick until Stop is called.
func (s *SessionSyncService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop gracefully shuts down the background loop. Safe to call multiple times.
func (s *SessionSyncService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SessionSyncService stopped")
	}
}

// SyncOnStartup performs a full sweep. Call it before accepting traffic.
func (s *SessionSyncService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Starting session whitelist sync...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	removed, err := s.Sweep(ctx)
	if err != nil {
		return err
	}

	s.log.Infof("Session whitelist sync completed: %d stale pointers removed in %v", removed, time.Since(startTime))
	return nil
}

// Sweep walks the whitelist once and returns the number of removed pointers.
func (s *SessionSyncService) Sweep(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := s.redisClient.Scan(ctx, cursor, sessionKeyPattern, syncBatchSize).Result()
		if err != nil {
			s.log.Warnf("Failed to scan session keys at cursor %d: %+v", cursor, err)
			return removed, fmt.Errorf("scan session keys at cursor %d: %w", cursor, err)
		}

		if len(keys) > 0 {
			n, err := s.dropStale(ctx, keys)
			if err != nil {
				return removed, err
			}
			removed += n
		}

		cursor = next
		if cursor == 0 {
			break
		}

		// Respect context cancellation
		select {
		case <-ctx.Done():
			return removed, ctx.Err()
		default:
		}
	}

	return removed, nil
}

// dropStale deletes the keys of this batch whose owner is missing or inactive.
func (s *SessionSyncService) dropStale(ctx context.Context, keys []string) (int, error) {
	owners, malformed := groupByOwner(keys)

	ids := make([]uuid.UUID, 0, len(owners))
	for id := range owners {
		ids = append(ids, id)
	}

	var active []uuid.UUID
	if len(ids) > 0 {
		err := s.db.WithContext(ctx).Model(&entity.User{}).
			Where("id IN ? AND activo = ?", ids, true).
			Pluck("id", &active).Error
		if err != nil {
			s.log.Warnf("Failed to load active users for session sync: %+v", err)
			return 0, fmt.Errorf("query active users: %w", err)
		}
	}

	stale := staleKeys(owners, active, malformed)
	if len(stale) == 0 {
		return 0, nil
	}

	// New pipeline for THIS batch only
	pipe := s.redisClient.TxPipeline()
	for _, key := range stale {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnf("Failed to delete stale session pointers: %+v", err)
		return 0, fmt.Errorf("pipeline exec: %w", err)
	}

	s.log.Debugf("Removed %d stale session pointers", len(stale))
	return len(stale), nil
}

func (s *SessionSyncService) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Session sweep goroutine stopping")
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval/2)
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Warnf("Failed to sweep session whitelist: %+v", err)
			}
			cancel()
		}
	}
}

// groupByOwner buckets whitelist keys by user id. Keys that do not parse are
// returned separately; they can never be honoured and are always stale.
func groupByOwner(keys []string) (map[uuid.UUID][]string, []string) {
	owners := make(map[uuid.UUID][]string)
	var malformed []string
	for _, key := range keys {
		userID, ok := sessionOwner(key)
		if !ok {
			malformed = append(malformed, key)
			continue
		}
		owners[userID] = append(owners[userID], key)
	}
	return owners, malformed
}

// staleKeys returns the malformed keys plus every key whose owner is not active.
func staleKeys(owners map[uuid.UUID][]string, active []uuid.UUID, malformed []string) []string {
	keep := make(map[uuid.UUID]bool, len(active))
	for _, id := range active {
		keep[id] = true
	}
	stale := append([]string(nil), malformed...)
	for id, userKeys := range owners {
		if !keep[id] {
			stale = append(stale, userKeys...)
		}
	}
	return stale
}

// sessionOwner extracts the user id from "session:{user_id}:{token_id}".
func sessionOwner(key string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(key, "session:")
	if !ok {
		return uuid.Nil, false
	}
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
