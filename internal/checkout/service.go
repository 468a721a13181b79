package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/cart"
	"github.com/freshkart/freshkart-api/internal/catalog"
	kafkax "github.com/freshkart/freshkart-api/internal/kafka"
	"github.com/freshkart/freshkart-api/internal/logkey"
)

type OrderStore interface {
	Insert(ctx context.Context, o *Order) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	PageAll(ctx context.Context, page, limit int64) ([]Order, int64, error)
	PageByUser(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Order, int64, error)
	Apply(ctx context.Context, id primitive.ObjectID, u StatusUpdate) (*Order, error)
}

type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*cart.Cart, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*catalog.Product, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type StatusCache interface {
	Set(ctx context.Context, orderID string, doc any) error
	Get(ctx context.Context, orderID string) (json.RawMessage, bool, error)
}

// Service owns the order lifecycle: materializing orders from carts and
// driving the four status axes. Repository failures surface unchanged;
// nothing here retries.
type Service struct {
	Orders    OrderStore
	Carts     CartStore
	Products  ProductReader
	Placed    Publisher // order.placed
	StatusPub Publisher // order.status
	Cache     StatusCache
	Producer  string // envelope producer name
}

type PlaceOrderInput struct {
	PaymentMethod   PaymentMethod
	Currency        string
	CouponCode      string
	DiscountAmount  float64
	ShippingAddress *Address
	BillingAddress  *Address
	TraceID         string
}

// PlaceOrder converts the user's cart into an order, snapshotting product
// data so later catalog edits never alter history. The cart is destroyed on
// success.
func (s *Service) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*Order, error) {
	if !ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperr.Reject(http.StatusBadRequest, "unsupported payment method")
	}
	c, err := s.Carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Items) == 0 {
		return nil, apperr.Reject(http.StatusBadRequest, "cart is empty")
	}

	items := make([]Item, 0, len(c.Items))
	total := decimal.Zero
	for _, line := range c.Items {
		p, err := s.Products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.IsDeleted {
			return nil, apperr.Reject(http.StatusBadRequest, "product is no longer available")
		}
		v := p.VariantByID(line.VariantID)
		if v == nil {
			return nil, apperr.Reject(http.StatusBadRequest, "product variant is no longer available")
		}
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		items = append(items, Item{
			ProductID:     p.ID,
			VariantID:     v.ID,
			Name:          p.Name,
			Quantity:      line.Quantity,
			Weight:        v.Weight,
			InPrice:       v.InPrice,
			OutPrice:      v.OutPrice,
			Image:         image,
			StockQuantity: v.StockQuantity,
			Rating:        p.Rating,
		})
		total = total.Add(decimal.NewFromFloat(v.OutPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Sub(decimal.NewFromFloat(in.DiscountAmount))
	if total.IsNegative() {
		total = decimal.Zero
	}

	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}
	now := time.Now().UTC()
	amount, _ := total.Float64()
	o := &Order{
		UserID:          userID,
		CartID:          c.ID,
		TransactionID:   uuid.NewString(),
		OrderPlacedAt:   now,
		Items:           items,
		PaymentMethod:   in.PaymentMethod,
		Amount:          amount,
		Currency:        currency,
		CouponCode:      in.CouponCode,
		DiscountAmount:  in.DiscountAmount,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		PaymentStatus:   PaymentPending,
		OrderStatus:     OrderProcessing,
		ReturnStatus:    ReturnNotRequested,
		RefundStatus:    RefundNotInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	id, err := s.Orders.Insert(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id

	if _, err := s.Carts.DeleteByUser(ctx, userID); err != nil {
		// order exists; a stale cart is recoverable, losing the order is not
		slog.Error("cart delete after checkout failed",
			slog.String(logkey.OrderID, id.Hex()), slog.String(logkey.ERROR, err.Error()))
	}

	s.cache(ctx, o)
	s.publish(s.Placed, EventOrderPlaced, id.Hex(), in.TraceID, OrderPlacedPayload{
		OrderID:     id.Hex(),
		UserID:      userID.Hex(),
		ItemCount:   len(items),
		AmountCents: total.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:    currency,
		Method:      in.PaymentMethod,
	})
	return o, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	o, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// GetForUser hides other users' orders behind not-found.
func (s *Service) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// Status serves the compact status view, cache first. A miss reads the
// order and warms the cache.
func (s *Service) Status(ctx context.Context, id primitive.ObjectID) (StatusDoc, error) {
	if s.Cache != nil {
		if raw, ok, err := s.Cache.Get(ctx, id.Hex()); err == nil && ok {
			var doc StatusDoc
			if err := json.Unmarshal(raw, &doc); err == nil {
				return doc, nil
			}
		}
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return StatusDoc{}, err
	}
	s.cache(ctx, o)
	return o.StatusDoc(), nil
}

func (s *Service) ListAll(ctx context.Context, page, limit int64) ([]Order, int64, error) {
	return s.Orders.PageAll(ctx, page, limit)
}

func (s *Service) ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Order, int64, error) {
	return s.Orders.PageByUser(ctx, userID, page, limit)
}

// SetPaymentStatus drives the payment axis; completed and failed are
// terminal.
func (s *Service) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, to PaymentStatus, failureReason, traceID string) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.PaymentStatus.CanTransition(to) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("payment status cannot change from %s to %s", o.PaymentStatus, to))
	}
	u := StatusUpdate{PaymentStatus: &to}
	if to == PaymentCompleted {
		now := time.Now().UTC()
		u.PaymentCompletedAt = &now
	}
	if to == PaymentFailed && failureReason != "" {
		u.PaymentFailureReason = &failureReason
	}
	return s.applyTransition(ctx, o, u, "payment", string(o.PaymentStatus), string(to), failureReason, traceID)
}

// SetOrderStatus moves the fulfilment axis forward (shipped, delivered).
// Cancellation goes through Cancel.
func (s *Service) SetOrderStatus(ctx context.Context, id primitive.ObjectID, to OrderStatus, trackingID, traceID string) (*Order, error) {
	if to == OrderCancelled {
		return nil, apperr.Reject(http.StatusBadRequest, "use the cancel operation to cancel an order")
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.OrderStatus.CanTransition(to) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("order status cannot change from %s to %s", o.OrderStatus, to))
	}

	u := StatusUpdate{OrderStatus: &to}
	if trackingID != "" {
		u.TrackingID = &trackingID
	}
	if to == OrderDelivered {
		// an unpaid order cannot be handed over unless it is cash on delivery,
		// in which case delivery is the moment payment completes
		switch {
		case o.PaymentStatus == PaymentCompleted:
		case o.PaymentMethod == MethodCOD && o.PaymentStatus == PaymentPending:
			completed := PaymentCompleted
			now := time.Now().UTC()
			u.PaymentStatus = &completed
			u.PaymentCompletedAt = &now
		default:
			return nil, apperr.Reject(http.StatusBadRequest, "order cannot be delivered before payment completes")
		}
		now := time.Now().UTC()
		u.DeliveredAt = &now
	}
	return s.applyTransition(ctx, o, u, "order", string(o.OrderStatus), string(to), "", traceID)
}

func (s *Service) Cancel(ctx context.Context, id primitive.ObjectID, reason, traceID string) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.OrderStatus.CanTransition(OrderCancelled) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("order status cannot change from %s to %s", o.OrderStatus, OrderCancelled))
	}
	cancelled := OrderCancelled
	u := StatusUpdate{OrderStatus: &cancelled}
	if reason != "" {
		u.CancellationReason = &reason
	}
	return s.applyTransition(ctx, o, u, "order", string(o.OrderStatus), string(OrderCancelled), reason, traceID)
}

// RequestReturn starts the return axis; only delivered orders can come back.
func (s *Service) RequestReturn(ctx context.Context, id, userID primitive.ObjectID, traceID string) (*Order, error) {
	o, err := s.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if o.OrderStatus != OrderDelivered {
		return nil, apperr.Reject(http.StatusBadRequest, "only delivered orders can be returned")
	}
	if !o.ReturnStatus.CanTransition(ReturnRequested) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("return status cannot change from %s to %s", o.ReturnStatus, ReturnRequested))
	}
	requested := ReturnRequested
	return s.applyTransition(ctx, o, StatusUpdate{ReturnStatus: &requested},
		"return", string(o.ReturnStatus), string(ReturnRequested), "", traceID)
}

func (s *Service) ResolveReturn(ctx context.Context, id primitive.ObjectID, approve bool, traceID string) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	to := ReturnRejected
	if approve {
		to = ReturnApproved
	}
	if !o.ReturnStatus.CanTransition(to) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("return status cannot change from %s to %s", o.ReturnStatus, to))
	}
	return s.applyTransition(ctx, o, StatusUpdate{ReturnStatus: &to},
		"return", string(o.ReturnStatus), string(to), "", traceID)
}

// SetRefundStatus drives the refund axis. A refund may only start once the
// return is approved, or for a cancelled order that was already paid.
func (s *Service) SetRefundStatus(ctx context.Context, id primitive.ObjectID, to RefundStatus, traceID string) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.RefundStatus.CanTransition(to) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("refund status cannot change from %s to %s", o.RefundStatus, to))
	}
	if to == RefundInitiated {
		refundable := o.ReturnStatus == ReturnApproved ||
			(o.OrderStatus == OrderCancelled && o.PaymentStatus == PaymentCompleted)
		if !refundable {
			return nil, apperr.Reject(http.StatusBadRequest,
				"refund requires an approved return or a paid cancelled order")
		}
	}
	return s.applyTransition(ctx, o, StatusUpdate{RefundStatus: &to},
		"refund", string(o.RefundStatus), string(to), "", traceID)
}

func (s *Service) applyTransition(ctx context.Context, o *Order, u StatusUpdate, axis, from, to, reason, traceID string) (*Order, error) {
	updated, err := s.Orders.Apply(ctx, o.ID, u)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.ErrNotFound
	}
	s.cache(ctx, updated)
	s.publish(s.StatusPub, EventOrderStatusChanged, o.ID.Hex(), traceID, OrderStatusChangedPayload{
		OrderID: o.ID.Hex(),
		Axis:    axis,
		From:    from,
		To:      to,
		Reason:  reason,
		Status:  updated.StatusDoc(),
	})
	return updated, nil
}

func (s *Service) cache(ctx context.Context, o *Order) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, o.ID.Hex(), o.StatusDoc()); err != nil {
		slog.Warn("order status cache write failed",
			slog.String(logkey.OrderID, o.ID.Hex()), slog.String(logkey.ERROR, err.Error()))
	}
}

func (s *Service) publish(p Publisher, eventType, orderID, traceID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Producer,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
