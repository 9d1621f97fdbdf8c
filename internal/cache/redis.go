// Package cache keeps finished predictions in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/resilience"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

const (
	DefaultTTL    = 10 * time.Minute
	DefaultPrefix = "valuator:prediction:"
)

type Config struct {
	URL    string
	TTL    time.Duration
	Prefix string
	// MaxFailures consecutive backend errors stop cache calls for Cooldown.
	MaxFailures int
	Cooldown    time.Duration
}

// RedisCache never fails a prediction: backend errors are logged and reported
// as misses, and a backend that keeps failing is skipped for a while.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	breaker *resilience.CircuitBreaker
	log     logrus.FieldLogger
}

// Connect parses cfg.URL, opens a client and pings it.
func Connect(ctx context.Context, cfg Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Infof("Redis cache connected: %s", opts.Addr)
	return New(client, cfg), nil
}

func New(client *redis.Client, cfg Config) *RedisCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	log := logger.Get()
	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.Prefix,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        "redis",
			MaxFailures: cfg.MaxFailures,
			Cooldown:    cfg.Cooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warnf("Cache circuit %s: %s -> %s", name, from, to)
			},
		}),
		log: log,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.PredictionResult, bool) {
	var data []byte
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.log.Warnf("Cache read failed: %v", err)
		}
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var result models.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.log.Warnf("Dropping undecodable cache entry %s: %v", key, err)
		c.client.Del(ctx, c.prefix+key)
		return nil, false
	}
	return &result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *models.PredictionResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.log.Warnf("Cache encode failed: %v", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.log.Warnf("Cache write failed: %v", err)
	}
}

// Flush drops every cached prediction, e.g. after new artifacts are loaded.
func (c *RedisCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// CircuitState reports whether cache calls are currently being skipped.
func (c *RedisCache) CircuitState() resilience.State {
	return c.breaker.State()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
