package observability

import (
	"context"
	"fmt"
	"time"
)

// Observer provides structured logging for adapter internals. Implementations
// must be safe for concurrent use; the adapter calls the observer from the
// request path and from streaming iterators.
type Observer interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Span represents a single unit of work. The adapter annotates spans with
// request/response lifecycle events; span creation and export belong to the
// caller's tracing system.
type Span interface {
	// End completes the span
	End()
	// SetAttributes adds attributes to the span
	SetAttributes(attrs ...Attribute)
	// RecordError records an error
	RecordError(err error)
	// AddEvent adds an event to the span
	AddEvent(name string, attrs ...Attribute)
}

// --- ATTRIBUTES (Key-Value pairs) ---

// Attribute represents a key-value pair for metadata
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute rendered in milliseconds
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an error attribute with the standard "error" key
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: "error", Value: "<nil>"}
	}
	return Attribute{Key: "error", Value: err.Error()}
}

// Any creates an attribute from an arbitrary value
func Any(key string, value any) Attribute {
	return Attribute{Key: key, Value: fmt.Sprintf("%v", value)}
}
