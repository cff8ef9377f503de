package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // Key doesn't exist - not an error
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if ttl > 0 {
		err = c.client.Set(ctx, key, jsonData, ttl).Err()
	} else {
		err = c.client.Set(ctx, key, jsonData, 0).Err()
	}

	if err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Error("Cache exists failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("exists failed", "exists", key, err)
	}
	return count > 0, nil
}

func (c *CacheService) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		c.logger.Error("Cache expire failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("expire failed", "expire", key, err)
	}
	return nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for Redis to be ready")
		case <-ticker.C:
			if c.IsConnected(ctx) {
				return nil
			}
		}
	}
}

// GetDecision returns the cached commentary verdict for a video, if any.
func (c *CacheService) GetDecision(ctx context.Context, key string) (*domain.CommentaryDecision, bool) {
	var decision *domain.CommentaryDecision
	if err := c.Get(ctx, key, &decision); err != nil {
		c.logger.Debug("Cache miss or error", zap.String("key", key))
		return nil, false
	}

	if decision == nil {
		return nil, false
	}

	return decision, true
}

func (c *CacheService) SetDecision(ctx context.Context, key string, decision *domain.CommentaryDecision, ttl time.Duration) {
	if err := c.Set(ctx, key, decision, ttl); err != nil {
		c.logger.Error("Failed to cache decision", zap.String("key", key), zap.Error(err))
	}
}
