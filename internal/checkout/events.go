package checkout

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

const (
	TopicOrderPlaced = "order.placed"
	TopicOrderStatus = "order.status"
)

// Envelope is the v1 event wrapper. Events for one order share a partition
// key so consumers see them in order.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID     string        `json:"order_id"`
	UserID      string        `json:"user_id"`
	ItemCount   int           `json:"item_count"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Method      PaymentMethod `json:"method"`
}

// OrderStatusChangedPayload records one transition on one axis.
type OrderStatusChangedPayload struct {
	OrderID string    `json:"order_id"`
	Axis    string    `json:"axis"` // payment | order | return | refund
	From    string    `json:"from"`
	To      string    `json:"to"`
	Reason  string    `json:"reason,omitempty"`
	Status  StatusDoc `json:"status"`
}

func PartitionKey(orderID string) []byte { return []byte(orderID) }
