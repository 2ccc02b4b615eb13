package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "pharmaops:report:"

// RedisReportCache implements ReportCache on Redis so every instance shares
// cached reports. Invalidation bumps a per-pharmacy generation counter;
// entries of older generations are never read again and age out by TTL.
type RedisReportCache struct {
	client    *redis.Client
	locker    *redislock.Client
	ttl       time.Duration
	keyPrefix string
}

// Build locks are held for at most buildLockTTL; waiters poll every
// buildLockRetry for up to buildLockWait.
const (
	buildLockTTL   = 30 * time.Second
	buildLockRetry = 50 * time.Millisecond
	buildLockWait  = 5 * time.Second
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisReportCache connects to Redis and verifies the connection
func NewRedisReportCache(cfg RedisConfig, ttl time.Duration) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReportCacheWithClient(client, ttl, ""), nil
}

// NewRedisReportCacheWithClient creates a cache on an existing client
func NewRedisReportCacheWithClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisReportCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisReportCache{
		client:    client,
		locker:    redislock.New(client),
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get decodes the current-generation entry for key into dest
func (c *RedisReportCache) Get(ctx context.Context, pharmacyID uuid.UUID, key string, dest any) (bool, error) {
	gen, err := c.generation(ctx, pharmacyID)
	if err != nil {
		return false, err
	}
	val, err := c.client.Get(ctx, c.entryKey(pharmacyID, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cached report: %w", err)
	}
	if err := decode(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Generation returns the pharmacy's current generation
func (c *RedisReportCache) Generation(ctx context.Context, pharmacyID uuid.UUID) (int64, error) {
	return c.generation(ctx, pharmacyID)
}

// Set stores value under key in generation gen. An entry written for a
// superseded generation is unreachable and ages out by TTL.
func (c *RedisReportCache) Set(ctx context.Context, pharmacyID uuid.UUID, gen int64, key string, value any) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.entryKey(pharmacyID, gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// InvalidatePharmacy moves the pharmacy to a new generation
func (c *RedisReportCache) InvalidatePharmacy(ctx context.Context, pharmacyID uuid.UUID) error {
	if err := c.client.Incr(ctx, c.generationKey(pharmacyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate reports: %w", err)
	}
	return nil
}

// LockBuild serializes the building of one report across instances so a
// cache miss under load is computed once. When the lock cannot be obtained
// within buildLockWait the caller builds anyway: ok is false and release is
// a no-op.
func (c *RedisReportCache) LockBuild(ctx context.Context, pharmacyID uuid.UUID, key string) (release func(), ok bool, err error) {
	lockKey := c.keyPrefix + pharmacyID.String() + ":lock:" + key
	retries := int(buildLockWait / buildLockRetry)
	lock, err := c.locker.Obtain(ctx, lockKey, buildLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(buildLockRetry), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return func() {}, false, nil
	}
	if err != nil {
		return func() {}, false, fmt.Errorf("failed to obtain report build lock: %w", err)
	}
	return func() { _ = lock.Release(context.WithoutCancel(ctx)) }, true, nil
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) generation(ctx context.Context, pharmacyID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(pharmacyID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read report generation: %w", err)
	}
	return gen, nil
}

func (c *RedisReportCache) generationKey(pharmacyID uuid.UUID) string {
	return c.keyPrefix + pharmacyID.String() + ":gen"
}

func (c *RedisReportCache) entryKey(pharmacyID uuid.UUID, gen int64, key string) string {
	return c.keyPrefix + pharmacyID.String() + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

var _ ReportCache = (*RedisReportCache)(nil)
