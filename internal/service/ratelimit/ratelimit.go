package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/config"
)

// Service is a fixed-window request rate limiter keyed by caller
// identity (typically client IP).
type Service interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type redisService struct {
	client   *redis.Client
	logger   *logrus.Logger
	requests int
	window   time.Duration
}

// New builds the rate limiter. When rate limiting is disabled the
// returned service allows everything and needs no Redis.
func New(cfg config.RateLimitConfig, redisCfg config.RedisConfig, addr string, logger *logrus.Logger) (Service, error) {
	if !cfg.Enabled {
		logger.Info("rate limiting disabled")
		return &noopService{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
		PoolSize: redisCfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisCfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"requests": cfg.Requests,
		"window":   cfg.Window,
	}).Info("rate limiting service initialized")

	return &redisService{
		client:   client,
		logger:   logger,
		requests: cfg.Requests,
		window:   cfg.Window,
	}, nil
}

// Allow counts the request against the key's current window and reports
// whether it is still within the limit.
func (s *redisService) Allow(ctx context.Context, key string) (bool, error) {
	counterKey := fmt.Sprintf("ratelimit:%s", key)

	pipeline := s.client.Pipeline()
	incr := pipeline.Incr(ctx, counterKey)
	pipeline.Expire(ctx, counterKey, s.window)
	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("failed to increment rate limit counter")
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := incr.Val()
	allowed := count <= int64(s.requests)
	if !allowed {
		s.logger.WithFields(logrus.Fields{
			"key":   key,
			"count": count,
			"limit": s.requests,
		}).Warn("rate limit exceeded")
	}

	return allowed, nil
}

func (s *redisService) Close() error {
	return s.client.Close()
}

type noopService struct{}

func (n *noopService) Allow(ctx context.Context, key string) (bool, error) { return true, nil }
func (n *noopService) Close() error                                        { return nil }
