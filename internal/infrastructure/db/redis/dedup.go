package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const fundingDedupTTL = 24 * time.Hour

// FundingDedup provides idempotency checks for payment webhook events.
// Key format: funding:txn:<transaction_id>. The unique Mongo index is the
// durable backstop; this cache just short-circuits obvious replays.
type FundingDedup struct {
	client *redis.Client
}

// NewFundingDedup creates a FundingDedup wrapping the given Redis client.
func NewFundingDedup(client *redis.Client) *FundingDedup {
	return &FundingDedup{client: client}
}

// IsDuplicate reports whether this transaction has already been recorded.
func (d *FundingDedup) IsDuplicate(ctx context.Context, transactionID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(transactionID)).Result()
	if err != nil {
		return false, fmt.Errorf("funding dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this transaction has been processed (expires after
// fundingDedupTTL).
func (d *FundingDedup) Mark(ctx context.Context, transactionID string) error {
	return d.client.Set(ctx, d.key(transactionID), "1", fundingDedupTTL).Err()
}

func (d *FundingDedup) key(transactionID string) string {
	return "funding:txn:" + transactionID
}
