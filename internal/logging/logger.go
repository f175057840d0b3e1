// Package logging defines the structured-logging interface used across
// walletlock. The only implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "pin verified", "session", id, "attempt", n)
//
// PINs, digests and salts must never be passed as values.
type Logger interface {
	// Debug logs diagnostic detail, disabled by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning for unusual but non-fatal conditions, such as a
	// failed unlock attempt.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure of a platform facility (store, probe).
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
