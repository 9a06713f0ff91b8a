// Package ratelimit throttles public authentication routes per client IP.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/charity/pkg/logging"
)

// Counter increments the hit count of key inside the current window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type RedisCounter struct {
	Client redis.Cmdable
}

func (r RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

type Config struct {
	Prefix string
	Limit  int
	Window time.Duration
}

// FixedWindow allows Limit requests per client IP and route per Window. A nil
// counter or a non-positive limit disables it. Counter failures let requests through.
func FixedWindow(cfg Config, counter Counter) echo.MiddlewareFunc {
	if counter == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := Key(cfg.Prefix, c.Path(), c.RealIP())

			count, ttl, err := counter.Hit(ctx, key, cfg.Window)
			if err != nil {
				logging.FromContext(ctx).Warn("ratelimit_unavailable", "key", key, "error", err)
				return next(c)
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				if ttl <= 0 {
					ttl = cfg.Window
				}
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
				logging.FromContext(ctx).Warn("ratelimit_blocked", "status", 429, "key", key, "count", count)
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func Key(prefix, route, ip string) string {
	if prefix == "" {
		prefix = "rl"
	}
	return fmt.Sprintf("%s:%s:%s", prefix, route, ip)
}
