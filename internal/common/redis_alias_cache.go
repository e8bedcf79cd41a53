package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/logbook/internal/config"
	"infinite-experiment/logbook/internal/logging"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
)

// RedisAliasCache shares the alias cache across service instances
type RedisAliasCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ AliasCache = (*RedisAliasCache)(nil)

// NewRedisClient builds a client from the cache config. A failed ping is
// logged and the client is still returned; the pool reconnects on demand.
func NewRedisClient(cfg config.CacheConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn("Failed to ping Redis", "addr", cfg.RedisAddr, "error", err.Error())
		return client
	}

	logging.Info("Connected to Redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return client
}

func NewRedisAliasCache(client *redis.Client, ttl time.Duration) *RedisAliasCache {
	return &RedisAliasCache{client: client, ttl: ttl}
}

// Get treats any Redis failure as a miss; the catalog is the source of truth
func (r *RedisAliasCache) Get(ctx context.Context, alias string) (*gormModels.AircraftModel, bool) {
	data, err := r.client.Get(ctx, aliasKey(alias)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis alias cache get failed", "alias", alias, "error", err.Error())
		return nil, false
	}

	var model gormModels.AircraftModel
	if err := json.Unmarshal(data, &model); err != nil {
		logging.Warn("Redis alias cache holds an unreadable value", "alias", alias, "error", err.Error())
		return nil, false
	}

	return &model, true
}

func (r *RedisAliasCache) Set(ctx context.Context, alias string, model *gormModels.AircraftModel) {
	if model == nil {
		return
	}

	data, err := json.Marshal(model)
	if err != nil {
		logging.Warn("Redis alias cache marshal failed", "alias", alias, "error", err.Error())
		return
	}

	if err := r.client.Set(ctx, aliasKey(alias), data, r.ttl).Err(); err != nil {
		logging.Warn("Redis alias cache set failed", "alias", alias, "error", err.Error())
	}
}

func (r *RedisAliasCache) Delete(ctx context.Context, alias string) {
	if err := r.client.Del(ctx, aliasKey(alias)).Err(); err != nil {
		logging.Warn("Redis alias cache delete failed", "alias", alias, "error", err.Error())
	}
}

func (r *RedisAliasCache) Close() error {
	return r.client.Close()
}

// NewAliasCache picks the backend named by cfg
func NewAliasCache(cfg config.CacheConfig) AliasCache {
	if cfg.Backend == config.CacheRedis {
		return NewRedisAliasCache(NewRedisClient(cfg), cfg.TTL)
	}
	return NewMemoryAliasCache(cfg.TTL)
}
