package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused client bucket is kept
const limiterIdleTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per client key.
// Buckets of clients that went quiet expire on their own.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *gocache.Cache
}

// NewRateLimiter creates a limiter allowing perSecond requests per key with
// bursts of up to burst requests
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: gocache.New(limiterIdleTTL, 2*limiterIdleTTL),
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if v, ok := rl.buckets.Get(key); ok {
		rl.buckets.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	// Add loses to a concurrent insert of the same key; use the winner
	if err := rl.buckets.Add(key, l, gocache.DefaultExpiration); err != nil {
		if v, ok := rl.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// Remaining returns the whole tokens left in the key's bucket
func (rl *RateLimiter) Remaining(key string) int {
	tokens := int(rl.bucket(key).Tokens())
	if tokens < 0 {
		return 0
	}
	return tokens
}

// RateLimit returns a middleware limiting requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
