package ratelimit

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Limiter applies a Store to incoming requests, keyed by client IP.
type Limiter struct {
	store      Store
	retryAfter int
}

// New creates a Limiter. retryAfterSeconds is the hint sent to throttled
// clients.
func New(store Store, retryAfterSeconds int) *Limiter {
	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	return &Limiter{store: store, retryAfter: retryAfterSeconds}
}

// Middleware rejects requests over the limit with 429. Store failures let
// the request through.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		allowed, err := l.store.Allow(c.Request.Context(), key)
		if err != nil {
			log.Printf("WARN: rate limiter unavailable for %s: %v", key, err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(l.retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":    false,
				"error": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
