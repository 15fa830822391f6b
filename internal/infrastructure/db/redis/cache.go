package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

const (
	pendingKey = "requests:pending"
	pendingTTL = 30 * time.Second
)

// PendingCache caches the public pending-requests listing. Every failure is
// treated as a miss and logged at debug level; the store stays the source
// of truth.
type PendingCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewPendingCache creates a PendingCache wrapping the given Redis client.
func NewPendingCache(client *redis.Client, log zerolog.Logger) *PendingCache {
	return &PendingCache{client: client, log: log}
}

func (c *PendingCache) Get(ctx context.Context) ([]*domain.DonationRequest, bool) {
	payload, err := c.client.Get(ctx, pendingKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug().Err(err).Msg("pending cache read failed")
		}
		return nil, false
	}

	var items []*domain.DonationRequest
	if err := json.Unmarshal(payload, &items); err != nil {
		c.log.Debug().Err(err).Msg("pending cache payload corrupt, dropping")
		_ = c.client.Del(ctx, pendingKey).Err()
		return nil, false
	}
	return items, true
}

func (c *PendingCache) Set(ctx context.Context, items []*domain.DonationRequest) {
	payload, err := json.Marshal(items)
	if err != nil {
		c.log.Debug().Err(err).Msg("pending cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, pendingKey, payload, pendingTTL).Err(); err != nil {
		c.log.Debug().Err(err).Msg("pending cache write failed")
	}
}

func (c *PendingCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, pendingKey).Err(); err != nil {
		c.log.Debug().Err(err).Msg("pending cache invalidation failed")
	}
}
