package commission

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	COMPENSATION_STATS_CACHE_PREFIX = "compensation_stats:"
	MY_COMPENSATION_CACHE_PREFIX    = "my_compensation:"
	CALCULATION_LOCK_PREFIX         = "compensation_lock:"

	// Every state-changing operation on a compensation publishes the period
	// here; read paths (admin list, stats, dashboards) subscribe instead of
	// relying on implicit shared-cache side effects.
	PERIOD_CHANGED_CHANNEL = "compensation.period_changed"

	STATS_CACHE_TTL      = 2 * time.Hour
	CALCULATION_LOCK_TTL = 30 * time.Second
)

type PeriodChangedEvent struct {
	InformatoreID int64 `json:"informatore_id"`
	Month         int   `json:"month"`
	Year          int   `json:"year"`
}

// periodLocker serializes calculations of one (informatore, period). A held
// lock means a concurrent calculation is in flight and the caller gets a
// ConflictError rather than interleaving with it.
type periodLocker interface {
	Acquire(ctx context.Context, informatoreID int64, month, year int) (func(), error)
}

// periodCache is the read cache plus the invalidation fan-out behind the
// service's query surface.
type periodCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, informatoreID int64, month, year int)
}

func statsCacheKey(month, year int) string {
	return fmt.Sprintf("%s%04d-%02d", COMPENSATION_STATS_CACHE_PREFIX, year, month)
}

func myCompensationCacheKey(informatoreID int64, month, year int) string {
	return fmt.Sprintf("%s%d:%04d-%02d", MY_COMPENSATION_CACHE_PREFIX, informatoreID, year, month)
}

func calculationLockKey(informatoreID int64, month, year int) string {
	return fmt.Sprintf("%s%d:%04d-%02d", CALCULATION_LOCK_PREFIX, informatoreID, year, month)
}

// redisCache backs both the period cache and the advisory calculation lock.
type redisCache struct {
	client *redis.Client
}

func (r *redisCache) Acquire(ctx context.Context, informatoreID int64, month, year int) (func(), error) {
	key := calculationLockKey(informatoreID, month, year)
	ok, err := r.client.SetNX(ctx, key, 1, CALCULATION_LOCK_TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire calculation lock: %w", err)
	}
	if !ok {
		return nil, &ConflictError{InformatoreID: informatoreID, Month: month, Year: year}
	}
	return func() {
		if err := r.client.Del(context.Background(), key).Err(); err != nil {
			log.Printf("Failed to release calculation lock %s: %v", key, err)
		}
	}, nil
}

// Invalidate drops every cached read for the period and publishes the
// period-changed event.
func (r *redisCache) Invalidate(ctx context.Context, informatoreID int64, month, year int) {
	_ = r.client.Del(ctx, statsCacheKey(month, year)).Err()
	_ = r.client.Del(ctx, myCompensationCacheKey(informatoreID, month, year)).Err()

	payload, err := json.Marshal(PeriodChangedEvent{InformatoreID: informatoreID, Month: month, Year: year})
	if err == nil {
		if err := r.client.Publish(ctx, PERIOD_CHANGED_CHANNEL, payload).Err(); err != nil {
			log.Printf("Failed to publish period change for informatore %d: %v", informatoreID, err)
		}
	}
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error on GET %s: %v. Falling back to DB.", key, err)
		}
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Failed to set cache for key %s: %v", key, err)
	}
}
