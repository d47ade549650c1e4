package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const forecastKeyPrefix = "chatrelay:forecast:"

// RedisCache memoises forecasts in redis. Cache errors never fail a lookup.
type RedisCache struct {
	client *redis.Client
	next   Provider
	ttl    time.Duration
	log    *zerolog.Logger
}

var _ Provider = (*RedisCache)(nil)

// NewRedisCache connects to redisURL and wraps next.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration, next Provider, logger *zerolog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RedisCache{client: client, next: next, ttl: ttl, log: logger}, nil
}

// Close releases the redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// RandomTrack is never cached.
func (c *RedisCache) RandomTrack(ctx context.Context) (Track, error) {
	return c.next.RandomTrack(ctx)
}

// Forecast returns the cached forecast for city or fetches and stores it.
func (c *RedisCache) Forecast(ctx context.Context, city string) (Forecast, error) {
	key := forecastKeyPrefix + city

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var fc Forecast
		if jsonErr := json.Unmarshal(data, &fc); jsonErr == nil {
			return fc, nil
		}
		c.log.Warn().Str("city", city).Msg("discarding corrupt cached forecast")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("city", city).Msg("forecast cache read failed")
	}

	fc, err := c.next.Forecast(ctx, city)
	if err != nil {
		return Forecast{}, err
	}

	if data, err := json.Marshal(fc); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("city", city).Msg("forecast cache write failed")
		}
	}
	return fc, nil
}
