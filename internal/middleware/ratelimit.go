package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/response"
)

// RateLimiter is a per-IP fixed-window limiter backed by Redis, so every
// server instance shares the same counters.
type RateLimiter struct {
	rdb     *redis.Client
	scope   string
	limit   int
	window  time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration, m *metrics.Metrics, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		scope:   scope,
		limit:   limit,
		window:  window,
		metrics: m,
		log:     log.With().Str("component", "rate_limiter").Str("scope", scope).Logger(),
		now:     time.Now,
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Redis errors let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := rl.now()
		window := now.UnixNano() / int64(rl.window)
		key := config.CacheKey.RateLimitKey(rl.scope, c.ClientIP(), window)

		ctx := c.Request.Context()
		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.log.Warn().Err(err).Msg("Rate limit counter unavailable")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > rl.limit {
			reset := time.Unix(0, (window+1)*int64(rl.window))
			retry := int(reset.Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			rl.metrics.IncRateLimitRejects()
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
