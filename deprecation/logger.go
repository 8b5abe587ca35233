// Package deprecation implements the append-only deprecation-event
// sink spec.md §4.4 and §9 describe: a process-wide sink, passed as an
// explicit dependency rather than reached into as module state, safe
// for concurrent use without locking on the write path (log/slog's
// handlers are themselves safe for concurrent use).
package deprecation

import "log/slog"

// Event is one deprecation notice: a fixed category/key pair plus a
// caller-defined payload (spec.md §4.4 uses a sorted name list).
type Event struct {
	Category string
	Key      string
	Payload  any
}

// Sink receives deprecation events. internal/systemindex.Gate consumes
// this interface structurally (it declares its own, identical Emit
// method) so neither package needs to import the other.
type Sink interface {
	Emit(category, key string, payload any)
}

// Logger is the default Sink: it renders each event as a structured
// slog record at Warn level, the way util.InitSlog configures the
// resolver's own ambient logging.
type Logger struct {
	logger *slog.Logger
}

// NewLogger wraps logger (nil uses slog.Default()).
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (l *Logger) Emit(category, key string, payload any) {
	l.logger.Warn("deprecated index access",
		slog.String("category", category),
		slog.String("key", key),
		slog.Any("payload", payload),
	)
}

// NullLogger discards every event. Useful for tests and for callers
// that route deprecation notices through a different channel entirely.
type NullLogger struct{}

func (NullLogger) Emit(string, string, any) {}

// RecordingLogger accumulates events in memory, mirroring the
// teacher's test harness style of a fake collaborator over a real
// logging sink. Not safe for concurrent use.
type RecordingLogger struct {
	Events []Event
}

func (r *RecordingLogger) Emit(category, key string, payload any) {
	r.Events = append(r.Events, Event{Category: category, Key: key, Payload: payload})
}
