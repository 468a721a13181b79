package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingSignups is a keyed TTL store for unverified signup data. One entry
// per email, so concurrent registrations never collide, and entries expire on
// their own instead of leaning on a process-local timer.
type PendingSignups struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPendingSignups(rdb *redis.Client, ttl time.Duration) *PendingSignups {
	return &PendingSignups{rdb: rdb, ttl: ttl}
}

func (p *PendingSignups) Put(ctx context.Context, email string, payload []byte) error {
	return p.rdb.Set(ctx, fmt.Sprintf(KeySignup, email), payload, p.ttl).Err()
}

// Get returns (nil, false, nil) when no signup is pending for the email.
func (p *PendingSignups) Get(ctx context.Context, email string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, fmt.Sprintf(KeySignup, email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *PendingSignups) Delete(ctx context.Context, email string) error {
	return p.rdb.Del(ctx, fmt.Sprintf(KeySignup, email)).Err()
}
