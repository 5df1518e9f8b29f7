package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"luna/internal/domain"
	"luna/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

type counter interface {
	hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// redisCounter is a fixed-window counter on INCR/EXPIRE, shared by every instance.
type redisCounter struct {
	rdb *redis.Client
}

func (r redisCounter) hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	val, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		// first increment, set expiry
		r.rdb.Expire(ctx, key, window)
	}
	return val, nil
}

// RateLimiter builds rate limit middleware. It counts in Redis when a client is
// given and in process memory otherwise. Redis errors fail open.
type RateLimiter struct {
	counter counter
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	if rdb == nil {
		logger.Warn("redis not configured, rate limits are per process")
		return &RateLimiter{counter: newMemoryCounter()}
	}
	return &RateLimiter{counter: redisCounter{rdb: rdb}}
}

// ByIP limits requests per client IP.
// key format: rl:<window_seconds>:<ip>
func (l *RateLimiter) ByIP(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		l.limit(c, key, c.FullPath(), maxRequests, window)
	}
}

// ByUser limits requests per authenticated user within scope. JWT must run first.
// key format: user_rl:<scope>:<user_id>:<window_seconds>
func (l *RateLimiter) ByUser(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(UserIDKey)
		uid, isUser := userID.(domain.UserID)
		if !ok || !isUser {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "user_rl:" + scope + ":" + uid.String() + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		l.limit(c, key, scope+":"+c.FullPath(), maxRequests, window)
	}
}

func (l *RateLimiter) limit(c *gin.Context, key, endpoint string, maxRequests int, window time.Duration) {
	val, err := l.counter.hit(c.Request.Context(), key, window)
	if err != nil {
		logger.Warn("rate limiter unavailable", "error", err)
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}
