// Package logger defines the logging interface used across the block server.
package logger

// AppLogger is the structured logger handed to services and adapters.
type AppLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a child logger carrying the given key-value pairs.
	With(args ...any) AppLogger

	// DebugEnabled reports whether messages at debug level are emitted.
	DebugEnabled() bool
}
