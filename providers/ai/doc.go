// Package ai defines the shared, provider-agnostic types and interfaces that
// adapter implementations translate to and from their wire formats. Request
// data flows through [ChatRequest] and finished results are returned as
// [ChatResponse]; real-time streaming delivers [StreamEvent] values through a
// [ChatStream].
//
// The two central interfaces are [Provider] for synchronous chat completions
// and [StreamProvider] for streaming responses. Adapters attach non-fatal
// degradations as [CallWarning] values on the result instead of failing, and
// report fatal translation problems through the typed errors in errors.go.
package ai
