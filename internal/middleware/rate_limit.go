package middleware

import (
	"net/http"
	"sync"

	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var errTooManyRequests = apperror.New("TOO_MANY_REQUESTS", "too many requests", http.StatusTooManyRequests)

// KeyedRateLimiter keeps one token bucket per key (client IP or user id).
type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}
	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			abortWith(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitByUser limits authenticated users to r requests per second with
// burst b. Anonymous requests pass through.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(userID).Allow() {
			abortWith(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}
