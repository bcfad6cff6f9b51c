package cache

import (
	"context"
	"errors"
	"fmt"
	"solar-siting-service/internal/domain"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const irradianceKeyPrefix = "irradiance:"

// RedisIrradianceCache stores mean irradiance per coordinate with a TTL.
// Climatology values change slowly, so long TTLs are expected.
type RedisIrradianceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIrradianceCache(client *redis.Client, ttl time.Duration) *RedisIrradianceCache {
	return &RedisIrradianceCache{client: client, ttl: ttl}
}

func (r *RedisIrradianceCache) Get(ctx context.Context, c domain.Coordinates) (float64, bool, error) {
	if r.client == nil {
		return 0, false, errors.New("irradiance cache: redis client is nil")
	}

	raw, err := r.client.Get(ctx, irradianceKeyPrefix+c.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get irradiance cache: %w", err)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("get irradiance cache: parse %q: %w", raw, err)
	}

	return v, true, nil
}

func (r *RedisIrradianceCache) Put(ctx context.Context, c domain.Coordinates, kwh float64) error {
	if r.client == nil {
		return errors.New("irradiance cache: redis client is nil")
	}

	val := strconv.FormatFloat(kwh, 'g', -1, 64)
	if err := r.client.Set(ctx, irradianceKeyPrefix+c.Key(), val, r.ttl).Err(); err != nil {
		return fmt.Errorf("put irradiance cache: %w", err)
	}

	return nil
}
