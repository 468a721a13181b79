package checkout

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// StatusUpdate is the field set produced by one validated transition; nil
// fields are untouched.
type StatusUpdate struct {
	PaymentStatus        *PaymentStatus
	PaymentFailureReason *string
	PaymentCompletedAt   *time.Time
	OrderStatus          *OrderStatus
	TrackingID           *string
	CancellationReason   *string
	DeliveredAt          *time.Time
	ReturnStatus         *ReturnStatus
	RefundStatus         *RefundStatus
}

func (u StatusUpdate) set() bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.PaymentStatus != nil {
		set["paymentStatus"] = *u.PaymentStatus
	}
	if u.PaymentFailureReason != nil {
		set["paymentFailureReason"] = *u.PaymentFailureReason
	}
	if u.PaymentCompletedAt != nil {
		set["paymentCompletedAt"] = *u.PaymentCompletedAt
	}
	if u.OrderStatus != nil {
		set["orderStatus"] = *u.OrderStatus
	}
	if u.TrackingID != nil {
		set["trackingId"] = *u.TrackingID
	}
	if u.CancellationReason != nil {
		set["cancellationReason"] = *u.CancellationReason
	}
	if u.DeliveredAt != nil {
		set["deliveredAt"] = *u.DeliveredAt
	}
	if u.ReturnStatus != nil {
		set["returnStatus"] = *u.ReturnStatus
	}
	if u.RefundStatus != nil {
		set["refundStatus"] = *u.RefundStatus
	}
	return set
}

// apply mirrors set() on an in-memory order, for fakes and for building the
// post-transition view without a re-read.
func (u StatusUpdate) apply(o *Order) {
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	if u.PaymentFailureReason != nil {
		o.PaymentFailureReason = *u.PaymentFailureReason
	}
	if u.PaymentCompletedAt != nil {
		o.PaymentCompletedAt = u.PaymentCompletedAt
	}
	if u.OrderStatus != nil {
		o.OrderStatus = *u.OrderStatus
	}
	if u.TrackingID != nil {
		o.TrackingID = *u.TrackingID
	}
	if u.CancellationReason != nil {
		o.CancellationReason = *u.CancellationReason
	}
	if u.DeliveredAt != nil {
		o.DeliveredAt = u.DeliveredAt
	}
	if u.ReturnStatus != nil {
		o.ReturnStatus = *u.ReturnStatus
	}
	if u.RefundStatus != nil {
		o.RefundStatus = *u.RefundStatus
	}
}
