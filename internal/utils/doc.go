// Package utils provides internal helpers shared across the adapter:
// HTTP POST helpers for synchronous and streaming calls, an SSE reader,
// and small string/pointer conveniences.
package utils
