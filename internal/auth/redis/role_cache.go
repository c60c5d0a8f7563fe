// Package redis caches role permission levels in front of the role table.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/auth"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "staff-registry:role:"

// unknownMarker caches negative lookups so a typo'd role does not hammer the
// database.
const unknownMarker = "-"

type RoleCache struct {
	client *goredis.Client
	next   auth.RoleRepository
	ttl    time.Duration
	logger *slog.Logger
}

func NewRoleCache(client *goredis.Client, next auth.RoleRepository, ttl time.Duration, logger *slog.Logger) *RoleCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleCache{client: client, next: next, ttl: ttl, logger: logger}
}

var _ auth.RoleRepository = (*RoleCache)(nil)

// GetLevel serves from redis and falls back to the wrapped repository. Redis
// failures are logged and bypassed.
func (c *RoleCache) GetLevel(ctx context.Context, role string) (int, error) {
	key := keyPrefix + role

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == unknownMarker {
			return 0, internal.ErrUnknownRole
		}
		if level, perr := strconv.Atoi(cached); perr == nil {
			return level, nil
		}
		c.logger.Warn("discarding malformed cached role level", "role", role, "value", cached)
	case errors.Is(err, goredis.Nil):
	default:
		c.logger.Warn("role cache read failed", "role", role, "error", err)
	}

	level, err := c.next.GetLevel(ctx, role)
	if err != nil {
		if errors.Is(err, internal.ErrUnknownRole) {
			c.set(ctx, key, unknownMarker)
		}
		return 0, err
	}

	c.set(ctx, key, strconv.Itoa(level))
	return level, nil
}

func (c *RoleCache) Invalidate(ctx context.Context, role string) error {
	return c.client.Del(ctx, keyPrefix+role).Err()
}

func (c *RoleCache) set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("role cache write failed", "key", key, "error", err)
	}
}
