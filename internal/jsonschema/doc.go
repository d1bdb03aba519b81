// Package jsonschema provides the JSON Schema value type shared by tool
// definitions and structured response formats, plus the normalization rules
// applied before schemas are sent on the wire.
package jsonschema
