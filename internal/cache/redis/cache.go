// Package redis caches settings snapshots in Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

const (
	keyPrefix        = "dispatch:settings:"
	generationPrefix = "dispatch:settings-gen:"
)

type client interface {
	MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Incr(ctx context.Context, key string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// SettingsCache stores settings snapshots as JSON documents with a TTL next
// to a per-restaurant generation counter.
type SettingsCache struct {
	client client
	ttl    time.Duration
}

// NewSettingsCache connects to addr.
func NewSettingsCache(addr string, ttl time.Duration) *SettingsCache {
	return newSettingsCache(goredis.NewClient(&goredis.Options{Addr: addr}), ttl)
}

func newSettingsCache(c client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: c, ttl: ttl}
}

func key(restaurantID string) string {
	return keyPrefix + restaurantID
}

func generationKey(restaurantID string) string {
	return generationPrefix + restaurantID
}

func (c *SettingsCache) Get(ctx context.Context, restaurantID string) (*model.Settings, int64, error) {
	vals, err := c.client.MGet(ctx, key(restaurantID), generationKey(restaurantID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("read settings cache: %w", err)
	}
	if len(vals) != 2 {
		return nil, 0, fmt.Errorf("read settings cache: unexpected reply of %d values", len(vals))
	}

	var generation int64
	if raw, ok := vals[1].(string); ok {
		if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("decode settings generation: %w", err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, domainErrors.ErrCacheMiss
	}
	var rec settingsRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, 0, fmt.Errorf("decode settings cache: %w", err)
	}
	if rec.Generation != generation {
		return nil, generation, domainErrors.ErrCacheMiss
	}
	s := rec.toModel()
	return &s, generation, nil
}

func (c *SettingsCache) Set(ctx context.Context, settings model.Settings, generation int64) error {
	raw, err := json.Marshal(recordOf(settings, generation))
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key(settings.Invoice.RestaurantID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write settings cache: %w", err)
	}
	return nil
}

func (c *SettingsCache) Invalidate(ctx context.Context, restaurantID string) error {
	if err := c.client.Incr(ctx, generationKey(restaurantID)).Err(); err != nil {
		return fmt.Errorf("advance settings generation: %w", err)
	}
	if err := c.client.Del(ctx, key(restaurantID)).Err(); err != nil {
		return fmt.Errorf("invalidate settings cache: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *SettingsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SettingsCache) Close() error {
	return c.client.Close()
}

// Noop never holds anything; used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (*model.Settings, int64, error) {
	return nil, 0, domainErrors.ErrCacheMiss
}

func (Noop) Set(context.Context, model.Settings, int64) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
