package checkout

// Four independent status axes, each with its own allowed-transition table.
// Cross-axis rules (payment before delivery, return after delivery, refund
// after approval) live in the service, at the single point of mutation.

type PaymentMethod string

const (
	MethodCOD      PaymentMethod = "COD"
	MethodRazorpay PaymentMethod = "Razorpay"
	MethodStripe   PaymentMethod = "Stripe"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCOD, MethodRazorpay, MethodStripe:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

var paymentNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:   {PaymentCompleted: true, PaymentFailed: true},
	PaymentCompleted: {},
	PaymentFailed:    {},
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool { return paymentNext[s][to] }

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true, OrderCancelled: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool { return orderNext[s][to] }

type ReturnStatus string

const (
	ReturnNotRequested ReturnStatus = "not_requested"
	ReturnRequested    ReturnStatus = "requested"
	ReturnApproved     ReturnStatus = "approved"
	ReturnRejected     ReturnStatus = "rejected"
)

var returnNext = map[ReturnStatus]map[ReturnStatus]bool{
	ReturnNotRequested: {ReturnRequested: true},
	ReturnRequested:    {ReturnApproved: true, ReturnRejected: true},
	ReturnApproved:     {},
	ReturnRejected:     {},
}

func (s ReturnStatus) CanTransition(to ReturnStatus) bool { return returnNext[s][to] }

type RefundStatus string

const (
	RefundNotInitiated RefundStatus = "not_initiated"
	RefundInitiated    RefundStatus = "initiated"
	RefundCompleted    RefundStatus = "completed"
	RefundFailed       RefundStatus = "failed"
)

var refundNext = map[RefundStatus]map[RefundStatus]bool{
	RefundNotInitiated: {RefundInitiated: true},
	RefundInitiated:    {RefundCompleted: true, RefundFailed: true},
	RefundCompleted:    {},
	RefundFailed:       {},
}

func (s RefundStatus) CanTransition(to RefundStatus) bool { return refundNext[s][to] }
