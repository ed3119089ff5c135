package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedamin/halal-screener/internal/models"
)

const (
	redisSnapshotPrefix = "screener:snapshot:"
	redisSnapshotIndex  = "screener:snapshot:index"
	redisOpTimeout      = 5 * time.Second
)

// RedisCache is a SnapshotCache backed by Redis, for deployments where
// the API service and the scan worker run as separate processes and
// need to share the latest-snapshot view.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed snapshot cache. A zero TTL keeps
// snapshots until overwritten.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Put stores the latest snapshot for its symbol
func (c *RedisCache) Put(snapshot *models.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, redisSnapshotPrefix+snapshot.Symbol, payload, c.ttl)
	pipe.SAdd(ctx, redisSnapshotIndex, snapshot.Symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store snapshot %s: %w", snapshot.Symbol, err)
	}
	return nil
}

// Get returns the latest snapshot for a symbol, or nil if absent
func (c *RedisCache) Get(symbol string) (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	payload, err := c.client.Get(ctx, redisSnapshotPrefix+symbol).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", symbol, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", symbol, err)
	}
	return &snapshot, nil
}

// All returns all cached snapshots
func (c *RedisCache) All() ([]*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	symbols, err := c.client.SMembers(ctx, redisSnapshotIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshot index: %w", err)
	}

	out := make([]*models.Snapshot, 0, len(symbols))
	for _, sym := range symbols {
		snapshot, err := c.Get(sym)
		if err != nil {
			return nil, err
		}
		if snapshot != nil {
			out = append(out, snapshot)
		}
	}
	return out, nil
}

// Len returns the number of cached symbols
func (c *RedisCache) Len() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := c.client.SCard(ctx, redisSnapshotIndex).Result()
	if err != nil {
		return 0, fmt.Errorf("snapshot index size: %w", err)
	}
	return int(n), nil
}
