// pattern: Imperative Shell

package logging

// NopLogger returns a logger that discards all output.
// Use in tests or when logging is not configured.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{
		slog:  nil, // nil slog means all logging is no-op
		zap:   nil,
		scope: "",
	}
}

// NopProvider returns loggers that discard all output, for tests that need
// a LoggerProvider.
type NopProvider struct{}

// For implements LoggerProvider.
func (NopProvider) For(string) *ScopedLogger { return NopLogger() }
