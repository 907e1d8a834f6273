package repository

import (
	"context"
	"fmt"
	"time"

	domainRepo "mentalwell/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type sessionRepository struct {
	client redis.UniversalClient
}

func NewSessionRepository(client redis.UniversalClient) domainRepo.SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s%s:%s", sessionKeyPrefix, userID.String(), tokenID)
}

func (r *sessionRepository) Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(userID, tokenID), "valid", ttl).Err()
}

func (r *sessionRepository) Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionRepository) Delete(ctx context.Context, userID uuid.UUID, tokenID string) error {
	return r.client.Del(ctx, sessionKey(userID, tokenID)).Err()
}

// DeleteByUserID scans instead of using KEYS so large keyspaces do not block
// the server.
func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("%s%s:*", sessionKeyPrefix, userID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
