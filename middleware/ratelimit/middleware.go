package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Config struct {
	Store  Store
	Rate   int
	Period time.Duration
	// SkipFailed refunds hits whose response status is 400 or above.
	SkipFailed     bool
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = IPKeyGenerator
	}
	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyGenerator(c)

			count, resetTime := cfg.Store.Increment(key, cfg.Period)

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if count > cfg.Rate {
				cfg.Store.Decrement(key)
				header.Set("X-RateLimit-Remaining", "0")
				header.Set("Retry-After", strconv.Itoa(max(int(time.Until(resetTime).Seconds()), 1)))
				return cfg.OnLimitReached(c)
			}

			header.Set("X-RateLimit-Remaining", strconv.Itoa(cfg.Rate-count))

			err := next(c)

			if cfg.SkipFailed && (err != nil || c.Response().Status >= http.StatusBadRequest) {
				cfg.Store.Decrement(key)
			}

			return err
		}
	}
}

func IPKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()
	if realIP == "" {
		realIP = "unknown"
	}
	return "rate_limit:ip:" + realIP
}

// UserKeyGenerator keys on a resolved user id, falling back to the client IP.
func UserKeyGenerator(prefix string, userID func(c echo.Context) uint) func(c echo.Context) string {
	return func(c echo.Context) string {
		if id := userID(c); id > 0 {
			return "rate_limit:" + prefix + ":user:" + strconv.FormatUint(uint64(id), 10)
		}
		return "rate_limit:" + prefix + ":ip:" + c.RealIP()
	}
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
}
