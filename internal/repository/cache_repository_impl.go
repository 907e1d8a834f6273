package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mentalwell/internal/domain/entity"
	domainRepo "mentalwell/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const (
	analysisCacheKey = "analysis:latest"
	systemConfigKey  = "system:config"
)

type analysisCache struct {
	client redis.UniversalClient
}

func NewAnalysisCache(client redis.UniversalClient) domainRepo.AnalysisCache {
	return &analysisCache{client: client}
}

func (c *analysisCache) Get(ctx context.Context) (*entity.AnalysisReport, error) {
	data, err := c.client.Get(ctx, analysisCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report entity.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *analysisCache) Set(ctx context.Context, report *entity.AnalysisReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, analysisCacheKey, data, ttl).Err()
}

type systemConfigRepository struct {
	client redis.UniversalClient
}

func NewSystemConfigRepository(client redis.UniversalClient) domainRepo.SystemConfigRepository {
	return &systemConfigRepository{client: client}
}

func (r *systemConfigRepository) Get(ctx context.Context) (*entity.SystemConfig, error) {
	data, err := r.client.Get(ctx, systemConfigKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg entity.SystemConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save persists without expiry.
func (r *systemConfigRepository) Save(ctx context.Context, cfg *entity.SystemConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, systemConfigKey, data, 0).Err()
}
