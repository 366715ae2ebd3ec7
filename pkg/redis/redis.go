package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
)

// Client wraps the Redis connection.
// Used for the token blacklist and the geocoding result cache.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient opens a Redis connection and pings it.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken stores a JWT ID with TTL equal to the token's remaining lifetime.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted reports whether a JWT ID is blacklisted.
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── geocoding cache ──

const geocodePrefix = "geocode:"

// CachedCoordinates is the cached geocoding payload.
type CachedCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GetGeocode returns a cached geocoding result, ok=false on miss.
func (c *Client) GetGeocode(ctx context.Context, query string) (*CachedCoordinates, bool, error) {
	raw, err := c.rdb.Get(ctx, geocodePrefix+query).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var coords CachedCoordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil, false, err
	}
	return &coords, true, nil
}

// SetGeocode caches a geocoding result with TTL.
func (c *Client) SetGeocode(ctx context.Context, query string, coords CachedCoordinates, ttl time.Duration) error {
	raw, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, geocodePrefix+query, raw, ttl).Err()
}

// ── rate limiting ──

// CheckRateLimit implements a fixed-window counter; returns false when the
// window already holds limit requests.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
