package cache

import (
	"context"
	"fmt"
	"time"

	"mentalwell/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the session whitelist store. Socket timeouts
// follow the store timeout so a hung server surfaces as a timeout instead
// of blocking the request.
func NewRedisClient(cfg config.RedisConfig, storeTimeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  storeTimeout,
		ReadTimeout:  storeTimeout,
		WriteTimeout: storeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", client.Options().Addr, err)
	}

	return client, nil
}
