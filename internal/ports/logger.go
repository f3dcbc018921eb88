package ports

import "context"

// Logger is the logging contract the engine's components depend on,
// keeping them decoupled from any concrete logging backend. Optional
// structured fields ride along as key-value maps.
type Logger interface {
	// Debug records diagnostic detail useful only when tracing a replay.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info records normal operational events.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn records recoverable problems worth surfacing.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error records a failure together with its underlying error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
