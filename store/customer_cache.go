package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"storepos/models"

	"github.com/redis/go-redis/v9"
)

type RedisCustomerCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCustomerCache(client *redis.Client, ttl time.Duration) *RedisCustomerCache {
	return &RedisCustomerCache{client: client, baseTTL: ttl}
}

func (r *RedisCustomerCache) Get(ctx context.Context, phone string) (*models.CustomerRecord, error) {
	data, err := r.client.Get(ctx, customerKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var c models.CustomerRecord
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal customer failed: %w", err)
	}
	return &c, nil
}

func (r *RedisCustomerCache) Set(ctx context.Context, phone string, c *models.CustomerRecord) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal customer failed: %w", err)
	}

	// джиттер, чтобы записи не истекали одновременно
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/5) + 1))
	if err := r.client.Set(ctx, customerKey(phone), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCustomerCache) Delete(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, customerKey(phone)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func customerKey(phone string) string {
	return fmt.Sprintf("pos:customer:%s", phone)
}

// NoopCache never holds anything; every Get is a miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.CustomerRecord, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(context.Context, string, *models.CustomerRecord) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }
