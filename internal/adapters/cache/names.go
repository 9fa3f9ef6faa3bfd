// Package cache provides a Redis read-through cache for creator display names.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"eventsapi/internal/domain"
	"eventsapi/internal/metrics"
)

const defaultPrefix = "eventsapi:user-name:"

// NameCache decorates a UserDirectory with Redis. Redis failures are logged and the lookup
// falls through to the wrapped directory.
type NameCache struct {
	client *redis.Client
	next   domain.UserDirectory
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewClient parses url and verifies the server answers PING.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewNameCache(client *redis.Client, next domain.UserDirectory, ttl time.Duration, logger *slog.Logger) *NameCache {
	return &NameCache{
		client: client,
		next:   next,
		ttl:    ttl,
		prefix: defaultPrefix,
		logger: logger,
	}
}

func (c *NameCache) key(id string) string {
	return c.prefix + id
}

func (c *NameCache) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	missing := ids
	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.CreatorNameLookups.WithLabelValues("error").Add(float64(len(ids)))
		c.logger.WarnContext(ctx, "name cache read failed", "err", err)
	} else {
		missing = nil
		for i, v := range cached {
			if s, ok := v.(string); ok {
				names[ids[i]] = s
				continue
			}
			missing = append(missing, ids[i])
		}
		metrics.CreatorNameLookups.WithLabelValues("hit").Add(float64(len(ids) - len(missing)))
		metrics.CreatorNameLookups.WithLabelValues("miss").Add(float64(len(missing)))
	}
	if len(missing) == 0 {
		return names, nil
	}

	resolved, err := c.next.DisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	pipe := c.client.Pipeline()
	for id, name := range resolved {
		names[id] = name
		pipe.Set(ctx, c.key(id), name, c.ttl)
	}
	if len(resolved) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.WarnContext(ctx, "name cache write failed", "err", err)
		}
	}
	return names, nil
}

// Invalidate drops cached names for ids.
func (c *NameCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
