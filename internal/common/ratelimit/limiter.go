// internal/common/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"healing-guide/internal/common/errors"
	"healing-guide/internal/common/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter stored in Redis, so every replica
// shares the same budget per client.
type Limiter struct {
	client redis.Cmdable
	route  string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(client redis.Cmdable, route string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		route:  route,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Allow counts a hit for key in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", l.route, key, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.limit,
		Remaining: remaining,
		ResetIn:   windowStart.Add(l.window).Sub(now),
	}, nil
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

type Responder interface {
	Respond(c *gin.Context, err error)
}

// Middleware enforces the limiter per client IP. A Redis failure lets
// the request through.
func (l *Limiter) Middleware(responder Responder, log Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.limit <= 0 {
			c.Next()
			return
		}

		decision, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", map[string]interface{}{
				"route": l.route,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprint(l.limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprint(decision.Remaining))

		if !decision.Allowed {
			metrics.RateLimitRejectionsTotal.WithLabelValues(l.route).Inc()
			responder.Respond(c, errors.NewRateLimitedError(decision.ResetIn))
			return
		}
		c.Next()
	}
}
