package redisx

import "time"

const (
	// Pending signup awaiting OTP verification: otp:signup:{email} -> payload JSON
	KeySignup = "otp:signup:%s"

	// Cached order status document: order_status:{order_id} -> JSON
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Dashboard counters hash.
	KeyDashboard = "dash:stats"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
