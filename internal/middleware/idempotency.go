package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	defaultIdempotencyLockTTL = 30 * time.Second
	idempotentResultTTL       = 24 * time.Hour
)

// IdempotentResult is the response a handler stores for replay.
type IdempotentResult struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// SaveIdempotentResult stores the status and data a handler answered with
// under cacheKey.
func SaveIdempotentResult(ctx context.Context, rdb *redis.Client, cacheKey string, status int, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(IdempotentResult{Status: status, Data: raw})
	if err != nil {
		return err
	}
	return rdb.Set(ctx, cacheKey, payload, idempotentResultTTL).Err()
}

var errRequestInProgress = apperror.New(
	apperror.CodeConflict,
	"a request with this idempotency key is still being processed",
	http.StatusConflict,
)

// Idempotency replays the cached response of a POST with a known
// Idempotency-Key and rejects concurrent duplicates. The handler stores
// the response under idempotency_cache_key with SaveIdempotentResult and
// releases idempotency_lock_key when done. lockTTL should outlast the
// slowest request; zero means 30s.
func Idempotency(rdb *redis.Client, lockTTL time.Duration) gin.HandlerFunc {
	if lockTTL <= 0 {
		lockTTL = defaultIdempotencyLockTTL
	}
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyHeader)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := c.GetString("user_id_validated")
		if userID == "" {
			userID = c.GetString("user_id")
		}
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var cached IdempotentResult
			if json.Unmarshal([]byte(val), &cached) == nil && cached.Status != 0 {
				c.Header("Idempotent-Replayed", "true")
				response.Success(c, cached.Status, cached.Data, nil)
				c.Abort()
				return
			}
		}

		// The lock expires on its own if the process dies mid-request.
		isNew, err := rdb.SetNX(c.Request.Context(), lockKey, "locked", lockTTL).Result()
		if err != nil {
			c.Next()
			return
		}
		if !isNew {
			abortWith(c, errRequestInProgress)
			return
		}

		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
