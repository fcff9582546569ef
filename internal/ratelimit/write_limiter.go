package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tourbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyWriteClient = "tourbill:write:client:%s"

// Limiter decides whether a caller may perform another write.
type Limiter interface {
	AllowWrite(ctx context.Context, client string) (*RateLimitResult, error)
}

// WriteLimiter throttles mutating requests per client.
type WriteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewWriteLimiter returns nil when rate limiting is disabled.
func NewWriteLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*WriteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.WriteRate <= 0 || limitCfg.WriteBurst <= 0 {
		return nil, errors.New("write rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					// Allowing writes while Redis is down beats refusing to boot.
					log.Warn("rate limit redis unreachable", zap.String("addr", addr), zap.Error(err))
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("write rate limit enabled",
		zap.Float64("rate", limitCfg.WriteRate),
		zap.Int("burst", limitCfg.WriteBurst),
	)
	return newWriteLimiter(client, limitCfg.WriteRate, limitCfg.WriteBurst), nil
}

func newWriteLimiter(client redis.Scripter, rate float64, burst int) *WriteLimiter {
	return &WriteLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
	}
}

func (l *WriteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *WriteLimiter) AllowWrite(ctx context.Context, client string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWriteClient, client), l.rate, l.burst)
}
