// Package dashboard maintains the admin dashboard counters from order
// lifecycle events, off the request path.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/freshkart/freshkart-api/internal/checkout"
	kafkax "github.com/freshkart/freshkart-api/internal/kafka"
	"github.com/freshkart/freshkart-api/internal/logkey"
	"github.com/freshkart/freshkart-api/internal/redisx"
)

const (
	fieldOrders       = "orders"
	fieldRevenueCents = "revenue_cents"
	fieldCancelled    = "cancelled"
	fieldDelivered    = "delivered"
)

// Service consumes order.placed and order.status messages. Events are
// deduplicated by event id so redelivery cannot double-count.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env checkout.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	seen, err := redisx.Seen(ctx, s.Redis, s.ServiceName, env.EventID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	switch env.EventType {
	case checkout.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[checkout.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		pipe := s.Redis.Pipeline()
		pipe.HIncrBy(ctx, redisx.KeyDashboard, fieldOrders, 1)
		pipe.HIncrBy(ctx, redisx.KeyDashboard, fieldRevenueCents, p.AmountCents)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		slog.Info("order counted", slog.String(logkey.OrderID, p.OrderID))
		return nil

	case checkout.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[checkout.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		if p.Axis == "order" {
			switch checkout.OrderStatus(p.To) {
			case checkout.OrderCancelled:
				if err := s.Redis.HIncrBy(ctx, redisx.KeyDashboard, fieldCancelled, 1).Err(); err != nil {
					return err
				}
			case checkout.OrderDelivered:
				if err := s.Redis.HIncrBy(ctx, redisx.KeyDashboard, fieldDelivered, 1).Err(); err != nil {
					return err
				}
			}
		}
		// keep the status cache warm for reads served by the API process
		b, err := json.Marshal(p.Status)
		if err != nil {
			return err
		}
		key := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
		return s.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()

	default:
		return nil
	}
}

type Stats struct {
	Orders         int64 `json:"orders"`
	RevenueCents   int64 `json:"revenueCents"`
	Cancelled      int64 `json:"cancelled"`
	Delivered      int64 `json:"delivered"`
	PendingReviews int64 `json:"pendingReviews"`
}

// ReviewCounter reports the size of the review moderation queue.
type ReviewCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

// Reader serves the dashboard endpoint from the counters hash plus a
// live moderation-queue count.
type Reader struct {
	Redis   *redis.Client
	Reviews ReviewCounter
}

func (r *Reader) Stats(ctx context.Context) (Stats, error) {
	vals, err := r.Redis.HGetAll(ctx, redisx.KeyDashboard).Result()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Orders:       atoi(vals[fieldOrders]),
		RevenueCents: atoi(vals[fieldRevenueCents]),
		Cancelled:    atoi(vals[fieldCancelled]),
		Delivered:    atoi(vals[fieldDelivered]),
	}
	if r.Reviews != nil {
		st.PendingReviews, err = r.Reviews.CountPending(ctx)
		if err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}

func atoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
