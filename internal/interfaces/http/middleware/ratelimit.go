package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/beezio/marketplace/internal/interfaces/http/dto"
)

// RateLimiter keeps one token bucket per caller key. Buckets idle for longer
// than the expiry are dropped and start full on the next request.
type RateLimiter struct {
	buckets *cache.Cache
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter allowing perSecond requests per key with
// the given burst
func NewRateLimiter(perSecond float64, burst int, idle time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &RateLimiter{
		buckets: cache.New(idle, 2*idle),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if v, ok := rl.buckets.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.buckets.Add(key, l, cache.DefaultExpiration); err != nil {
		// Another request created it first
		if v, ok := rl.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// Reserve takes a token for key. It returns zero when the request may proceed,
// otherwise how long the caller should wait.
func (rl *RateLimiter) Reserve(key string) time.Duration {
	l := rl.bucket(key)
	if l.Allow() {
		return 0
	}
	r := l.Reserve()
	delay := r.Delay()
	r.Cancel()
	if delay <= 0 {
		delay = time.Second
	}
	return delay
}

// CallerKey identifies the caller by identity, falling back to the client IP
func CallerKey(c *gin.Context) string {
	if id := GetIdentity(c); id != nil && id.Identity != "" {
		return "id:" + id.Identity
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects callers that exceed rl with 429 and a Retry-After header.
// A nil limiter disables the check.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		if wait := rl.Reserve(CallerKey(c)); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited, "Too many requests, slow down", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
