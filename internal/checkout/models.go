package checkout

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	FullName     string `bson:"fullName" json:"fullName"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
	Phone        string `bson:"phone" json:"phone"`
}

// Item is a snapshot of the product variant at the instant the order was
// placed. Later catalog edits never touch it.
type Item struct {
	ProductID     primitive.ObjectID `bson:"productId" json:"productId"`
	VariantID     primitive.ObjectID `bson:"variantId" json:"variantId"`
	Name          string             `bson:"name" json:"name"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Weight        string             `bson:"weight" json:"weight"`
	InPrice       float64            `bson:"inPrice" json:"inPrice"`
	OutPrice      float64            `bson:"outPrice" json:"outPrice"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	Rating        float64            `bson:"rating" json:"rating"`
}

type Order struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID               primitive.ObjectID `bson:"userId" json:"userId"`
	CartID               primitive.ObjectID `bson:"cartId" json:"cartId"`
	TransactionID        string             `bson:"transactionId" json:"transactionId"`
	OrderPlacedAt        time.Time          `bson:"orderPlacedAt" json:"orderPlacedAt"`
	Items                []Item             `bson:"items" json:"items"`
	PaymentMethod        PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Amount               float64            `bson:"amount" json:"amount"`
	Currency             string             `bson:"currency" json:"currency"`
	CouponCode           string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	DiscountAmount       float64            `bson:"discountAmount" json:"discountAmount"`
	ShippingAddress      *Address           `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	BillingAddress       *Address           `bson:"billingAddress,omitempty" json:"billingAddress,omitempty"`
	PaymentStatus        PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentFailureReason string             `bson:"paymentFailureReason,omitempty" json:"paymentFailureReason,omitempty"`
	OrderStatus          OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	ReturnStatus         ReturnStatus       `bson:"returnStatus" json:"returnStatus"`
	RefundStatus         RefundStatus       `bson:"refundStatus" json:"refundStatus"`
	TrackingID           string             `bson:"trackingId,omitempty" json:"trackingId,omitempty"`
	CancellationReason   string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	PaymentCompletedAt   *time.Time         `bson:"paymentCompletedAt,omitempty" json:"paymentCompletedAt,omitempty"`
	DeliveredAt          *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StatusDoc is the compact view cached in Redis and returned by status reads.
type StatusDoc struct {
	OrderID       string        `json:"orderId"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	ReturnStatus  ReturnStatus  `json:"returnStatus"`
	RefundStatus  RefundStatus  `json:"refundStatus"`
	TrackingID    string        `json:"trackingId,omitempty"`
}

func (o *Order) StatusDoc() StatusDoc {
	return StatusDoc{
		OrderID:       o.ID.Hex(),
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		ReturnStatus:  o.ReturnStatus,
		RefundStatus:  o.RefundStatus,
		TrackingID:    o.TrackingID,
	}
}
