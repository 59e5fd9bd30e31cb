package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wikifed/shibgate/internal/slogging"
)

// RedisConfig holds the configuration for Redis connection
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisDB represents a Redis database connection
type RedisDB struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedisDB creates a new Redis database connection
func NewRedisDB(cfg RedisConfig) (*RedisDB, error) {
	log := slogging.Get()
	log.Debug("Initializing Redis connection to %s:%s DB=%d", cfg.Host, cfg.Port, cfg.DB)

	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("Failed to ping Redis: %v", err)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Debug("Redis connection established")

	return &RedisDB{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewRedisDBFromClient wraps an existing client; used by tests running
// against miniredis.
func NewRedisDBFromClient(client *redis.Client) *RedisDB {
	return &RedisDB{client: client}
}

// GetClient returns the underlying redis client
func (db *RedisDB) GetClient() *redis.Client {
	return db.client
}

// Get retrieves a value by key
func (db *RedisDB) Get(ctx context.Context, key string) (string, error) {
	return db.client.Get(ctx, key).Result()
}

// Set stores a value with an expiration
func (db *RedisDB) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return db.client.Set(ctx, key, value, expiration).Err()
}

// Del deletes one or more keys
func (db *RedisDB) Del(ctx context.Context, keys ...string) error {
	return db.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection
func (db *RedisDB) Close() error {
	if db.client != nil {
		return db.client.Close()
	}
	return nil
}
