package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/paperdb/internal/config"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SearchCache holds search results between changes. Get returns the cache
// generation it read under; Set stores only under that generation, so results
// computed before an invalidation are never served after it.
type SearchCache interface {
	Get(ctx context.Context, term string) (results []SearchResult, generation int64, hit bool, err error)
	Set(ctx context.Context, generation int64, term string, results []SearchResult) error
	Invalidate(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]SearchResult, int64, bool, error) {
	return nil, 0, false, nil
}

func (noopCache) Set(context.Context, int64, string, []SearchResult) error { return nil }

func (noopCache) Invalidate(context.Context) error { return nil }

const (
	searchGenerationKey = "paperdb:search:gen"
	searchKeyPrefix     = "paperdb:search:"
)

// RedisSearchCache keeps search results in Redis under a generation counter.
// Invalidation bumps the counter; stale entries expire on their own.
type RedisSearchCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	return rdb, nil
}

// NewRedisSearchCache wraps a connected client.
func NewRedisSearchCache(rdb *goredis.Client, ttl time.Duration) *RedisSearchCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSearchCache{rdb: rdb, ttl: ttl}
}

func (c *RedisSearchCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, searchGenerationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func searchKey(generation int64, term string) string {
	return fmt.Sprintf("%s%d:%s", searchKeyPrefix, generation, term)
}

func (c *RedisSearchCache) Get(ctx context.Context, term string) ([]SearchResult, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read search generation: %w", err)
	}

	raw, err := c.rdb.Get(ctx, searchKey(gen, term)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("read cached search: %w", err)
	}

	var results []SearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, gen, false, fmt.Errorf("decode cached search: %w", err)
	}
	return results, gen, true, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, generation int64, term string, results []SearchResult) error {
	if results == nil {
		results = []SearchResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode search results: %w", err)
	}
	return c.rdb.Set(ctx, searchKey(generation, term), raw, c.ttl).Err()
}

func (c *RedisSearchCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, searchGenerationKey).Err()
}
