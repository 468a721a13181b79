package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Seen marks an event id as processed for a consumer and reports whether it
// had been seen before. SETNX keeps check-and-mark atomic across workers.
func Seen(ctx context.Context, rdb *redis.Client, service, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, service, eventID)
	set, err := rdb.SetNX(ctx, key, "1", TTLDedup).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}
