package assignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	VersionKeyPrefix = "assignment:version:"
	resolveKeyPrefix = "assignment:resolve:"
)

func VersionKey(companyID string) string {
	return VersionKeyPrefix + companyID
}

// ResolveKey is scoped by the company's assignment version, so a bump makes
// every cached resolution of the company unreachable at once.
func ResolveKey(companyID string, version int64, subjectType string, subjectID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("%s%s:v%d:%s:%s:%s",
		resolveKeyPrefix, companyID, version, subjectType, subjectID, dateutil.Format(asOf))
}

type cachedResolution struct {
	Found      bool        `json:"found"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

type resolveCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func (c *resolveCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *resolveCache) version(ctx context.Context, companyID string) (int64, error) {
	v, err := c.rdb.Get(ctx, VersionKey(companyID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *resolveCache) get(ctx context.Context, key string) (cachedResolution, bool) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("resolve cache read failed", zap.String("key", key), zap.Error(err))
		}
		return cachedResolution{}, false
	}
	var v cachedResolution
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return cachedResolution{}, false
	}
	return v, true
}

func (c *resolveCache) set(ctx context.Context, key string, res *Resolution) {
	payload, err := json.Marshal(cachedResolution{Found: res != nil, Resolution: res})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("resolve cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate makes the company's cached resolutions unreachable. Site and
// employee results depend on each other, so invalidation is company-wide.
func (c *resolveCache) invalidate(ctx context.Context, companyID string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Incr(ctx, VersionKey(companyID)).Err()
}

// bump is invalidate for writers that already committed and can only log.
func (c *resolveCache) bump(ctx context.Context, companyID string) {
	if err := c.invalidate(ctx, companyID); err != nil {
		c.logger.Error("bump assignment cache version failed",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
	}
}
