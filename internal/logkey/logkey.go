// Package logkey holds the shared attribute names used with slog so log
// aggregation can rely on stable field names.
package logkey

const (
	TraceID = "trace_id"
	ERROR   = "error"
	UserID  = "user_id"
	OrderID = "order_id"
	Entity  = "entity"
	Topic   = "topic"
)
