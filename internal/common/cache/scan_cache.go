// internal/common/cache/scan_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	intakeerrors "recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/logger"
	"recruit-intake/internal/common/metrics"
	"recruit-intake/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "intake:scan:"

// ScanCache stores repository scan results keyed by (username, as-of).
// The as-of component is the scan time truncated to the configured
// granularity, so a new day (or hour) always rescans. Stale entries are
// dropped explicitly through Invalidate, or by TTL.
type ScanCache struct {
	client      redis.Cmdable
	ttl         time.Duration
	granularity string
	now         func() time.Time
	logger      logger.Logger
}

type Option func(*ScanCache)

// WithClock overrides the time source used to derive the as-of key.
func WithClock(now func() time.Time) Option {
	return func(c *ScanCache) { c.now = now }
}

func NewScanCache(client redis.Cmdable, ttl time.Duration, granularity string, log logger.Logger, opts ...Option) *ScanCache {
	c := &ScanCache{
		client:      client,
		ttl:         ttl,
		granularity: granularity,
		now:         time.Now,
		logger:      log.WithFields(map[string]interface{}{"component": "scan-cache"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AsOf formats t at the cache granularity.
func (c *ScanCache) AsOf(t time.Time) string {
	t = t.UTC()
	if c.granularity == "hour" {
		return t.Format("2006-01-02T15")
	}
	return t.Format("2006-01-02")
}

// Key returns the cache key for username at the current as-of.
func (c *ScanCache) Key(username string) string {
	return keyPrefix + strings.ToLower(username) + ":" + c.AsOf(c.now())
}

// Get returns the cached scan for username, or ok=false on a miss.
func (c *ScanCache) Get(ctx context.Context, username string) (*models.RepositoryScan, bool, error) {
	key := c.Key(username)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
			return nil, false, nil
		}
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, intakeerrors.NewCacheUnavailableError(err)
	}

	var scan models.RepositoryScan
	if err := json.Unmarshal([]byte(val), &scan); err != nil {
		// a corrupt entry is a miss; the next Put replaces it
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &scan, true, nil
}

// Put stores scan for username under the current as-of key.
func (c *ScanCache) Put(ctx context.Context, username string, scan *models.RepositoryScan) error {
	data, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("failed to encode scan: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(username), data, c.ttl).Err(); err != nil {
		return intakeerrors.NewCacheUnavailableError(err)
	}
	return nil
}

// Invalidate removes every cached scan for username regardless of as-of and
// returns the number of keys deleted.
func (c *ScanCache) Invalidate(ctx context.Context, username string) (int, error) {
	pattern := keyPrefix + strings.ToLower(username) + ":*"

	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, intakeerrors.NewCacheUnavailableError(err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, intakeerrors.NewCacheUnavailableError(err)
	}

	c.logger.Info("invalidated cached scans", map[string]interface{}{
		"username": username,
		"deleted":  deleted,
	})
	return int(deleted), nil
}
