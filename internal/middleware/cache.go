package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/locaspot/booking-api/internal/config"
	"github.com/locaspot/booking-api/internal/metrics"
)

// View groups. Every cached GET belongs to a group, and every mutation
// invalidates the groups derived from the entity it touched.
const (
	ViewProducts = "products"
	ViewAdmin    = "admin"
)

// ViewCache stores whole GET responses in Redis, keyed by view group and
// request route/query. Mutating handlers call Invalidate with the groups
// they dirtied; the configured TTL only bounds staleness when an
// invalidation is missed. With a nil Redis client the cache is a no-op.
type ViewCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

func NewViewCache(cfg config.CacheConfig, rdb *redis.Client) *ViewCache {
	return &ViewCache{cfg: cfg, rdb: rdb}
}

func (vc *ViewCache) enabled() bool { return vc != nil && vc.cfg.Enabled && vc.rdb != nil }

// Middleware returns a caching middleware for GET routes of one view group.
func (vc *ViewCache) Middleware(group string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !vc.enabled() || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := vc.key(group, c)

			if bs, err := vc.rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, bs)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && rec.buf.Len() > 0 {
				_ = vc.rdb.SetEx(context.Background(), key, rec.buf.Bytes(), vc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// Invalidate drops every cached response of the given view groups. This is
// the invalidation signal at the end of the mutation contract; failures are
// ignored because a stale view self-heals when the TTL lapses.
func (vc *ViewCache) Invalidate(ctx context.Context, groups ...string) {
	if !vc.enabled() {
		return
	}
	for _, group := range groups {
		var cursor uint64
		pattern := fmt.Sprintf("%s:%s:*", vc.cfg.Prefix, group)
		for {
			keys, next, err := vc.rdb.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return
			}
			if len(keys) > 0 {
				_ = vc.rdb.Del(ctx, keys...).Err()
			}
			if next == 0 {
				break
			}
			cursor = next
		}
		metrics.CacheInvalidationsTotal.WithLabelValues(group).Inc()
	}
}

func (vc *ViewCache) key(group string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(c.Path() + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", vc.cfg.Prefix, group, sum[:])
}

// bodyRecorder captures the response body and status while forwarding to
// the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	br.buf.Write(b)
	return br.ResponseWriter.Write(b)
}
