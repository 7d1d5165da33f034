package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const keyPrefix = "storefront:ratelimit:"

// RedisStore is a fixed-window counter shared by every instance behind the
// same redis. It fails open when redis is unavailable.
type RedisStore struct {
	Client *redis.Client
	Limit  int
	Window time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

var _ middleware.RateLimiterStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, perMinute int, logger *slog.Logger) *RedisStore {
	return &RedisStore{Client: client, Limit: perMinute, Window: time.Minute, Logger: logger, Now: time.Now}
}

func (s *RedisStore) Allow(identifier string) (bool, error) {
	now := s.Now()
	window := now.UnixNano() / int64(s.Window)
	key := keyPrefix + identifier + ":" + strconv.FormatInt(window, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	pipe := s.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("ratelimit_store_error", "identifier", identifier, "error", err)
		}
		return true, nil
	}
	return incr.Val() <= int64(s.Limit), nil
}

// NewMemoryStore is the single-instance fallback when no redis is configured.
func NewMemoryStore(perMinute int) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
}

// Middleware limits per client IP and answers 429 with the usual envelope.
func Middleware(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health/live" || p == "/health/ready"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
