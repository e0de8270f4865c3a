package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/purposeful/coach/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyInitializeIP = "entitlement:initialize:ip:%s"

// InitializeLimiter throttles anonymous-user creation per client IP.
// A nil limiter means no redis is configured and every request passes.
type InitializeLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewInitializeLimiter(cfg config.Config, log *zap.Logger) *InitializeLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Named("ratelimit").Info("redis not configured, initialize rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	rate := cfg.InitializeRatePerMinute / 60
	if rate <= 0 {
		rate = 0.5
	}
	burst := cfg.InitializeRateBurst
	if burst <= 0 {
		burst = 10
	}

	return &InitializeLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
		log:    log.Named("ratelimit"),
	}
}

// AllowIP reports whether the client may create another anonymous user.
// Limiter errors fail open: a redis outage must not take down sign-in.
func (l *InitializeLimiter) AllowIP(ctx context.Context, ip string) *Result {
	if l == nil || l.bucket == nil {
		return &Result{Allowed: true}
	}

	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyInitializeIP, strings.TrimSpace(ip)), l.rate, l.burst)
	if err != nil {
		l.log.Error("initialize rate limit check failed", zap.String("ip", ip), zap.Error(err))
		return &Result{Allowed: true}
	}
	return res
}
