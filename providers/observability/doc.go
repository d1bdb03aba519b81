// Package observability defines the logging and tracing abstraction the
// adapter emits through. Both the [Observer] and the [Span] travel in the
// request context; when neither is present the adapter stays silent.
//
// The slogobs subpackage provides a ready-made log/slog-backed Observer.
package observability
