package checkout

import "testing"

func TestPaymentTransitions(t *testing.T) {
	cases := []struct {
		from, to PaymentStatus
		want     bool
	}{
		{PaymentPending, PaymentCompleted, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentCompleted, PaymentPending, false},
		{PaymentCompleted, PaymentFailed, false},
		{PaymentFailed, PaymentCompleted, false},
		{PaymentPending, PaymentPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("payment %s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, true},
		{OrderShipped, OrderProcessing, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderShipped, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("order %s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestReturnTransitions(t *testing.T) {
	cases := []struct {
		from, to ReturnStatus
		want     bool
	}{
		{ReturnNotRequested, ReturnRequested, true},
		{ReturnNotRequested, ReturnApproved, false},
		{ReturnRequested, ReturnApproved, true},
		{ReturnRequested, ReturnRejected, true},
		{ReturnApproved, ReturnRejected, false},
		{ReturnRejected, ReturnRequested, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("return %s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestRefundTransitions(t *testing.T) {
	cases := []struct {
		from, to RefundStatus
		want     bool
	}{
		{RefundNotInitiated, RefundInitiated, true},
		{RefundNotInitiated, RefundCompleted, false},
		{RefundInitiated, RefundCompleted, true},
		{RefundInitiated, RefundFailed, true},
		{RefundCompleted, RefundInitiated, false},
		{RefundFailed, RefundInitiated, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("refund %s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []PaymentMethod{MethodCOD, MethodRazorpay, MethodStripe} {
		if !ValidPaymentMethod(m) {
			t.Errorf("%s should be valid", m)
		}
	}
	if ValidPaymentMethod("PayPal") {
		t.Error("unknown method accepted")
	}
}
