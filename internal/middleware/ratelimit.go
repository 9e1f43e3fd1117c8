package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-API-key rate limiting middleware using token
// buckets. Each key's bucket fills at rps tokens/sec up to burst; a
// request consumes one token and an empty bucket yields 429. Print renders
// are expensive, so the configured defaults are deliberately low.
//
// A mutex guards the limiter map; a shared map with simple read/write is
// cleaner with a lock than with channels.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		// Get the API key set by auth middleware
		key, exists := c.Get("api_key")
		if !exists {
			// No API key means auth middleware didn't run — allow through
			c.Next()
			return
		}

		apiKey := key.(string)

		mu.Lock()
		limiter, exists := limiters[apiKey]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[apiKey] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
