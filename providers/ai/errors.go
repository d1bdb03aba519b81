package ai

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Each typed error below unwraps to one
// of these, so callers can branch on the category without knowing the
// concrete type.
var (
	ErrUnsupportedRole        = errors.New("unsupported message role")
	ErrUnsupportedContentPart = errors.New("unsupported content part")
	ErrUnsupportedContentType = errors.New("unsupported content media type")
	ErrUnsupportedToolChoice  = errors.New("unsupported tool choice")
	ErrInvalidResponseData    = errors.New("invalid response data")
)

// UnsupportedRoleError reports a conversation turn whose role the adapter does
// not recognize. Raised by the message converter's exhaustive role switch so
// that a new role variant forces an explicit decision instead of a silent drop.
type UnsupportedRoleError struct {
	Role MessageRole
}

func (e *UnsupportedRoleError) Error() string {
	return fmt.Sprintf("unsupported message role: %q", e.Role)
}

func (e *UnsupportedRoleError) Unwrap() error { return ErrUnsupportedRole }

// UnsupportedContentPartError reports a content part kind that cannot appear
// in a turn with the given role.
type UnsupportedContentPartError struct {
	Role MessageRole
	Part ContentType
}

func (e *UnsupportedContentPartError) Error() string {
	return fmt.Sprintf("unsupported content part %q in %q message", e.Part, e.Role)
}

func (e *UnsupportedContentPartError) Unwrap() error { return ErrUnsupportedContentPart }

// UnsupportedContentTypeError reports a media type the wire service has no
// attachment shape for (e.g. video in a user message).
type UnsupportedContentTypeError struct {
	MimeType string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content media type: %q", e.MimeType)
}

func (e *UnsupportedContentTypeError) Unwrap() error { return ErrUnsupportedContentType }

// UnsupportedToolChoiceError reports a tool-choice variant outside the
// canonical union. The tool preparer's switch over ToolChoiceType is
// exhaustive; anything else lands here.
type UnsupportedToolChoiceError struct {
	Choice ToolChoiceType
}

func (e *UnsupportedToolChoiceError) Error() string {
	return fmt.Sprintf("unsupported tool choice: %q", e.Choice)
}

func (e *UnsupportedToolChoiceError) Unwrap() error { return ErrUnsupportedToolChoice }

// InvalidResponseDataError reports a wire response that failed structural
// validation with no recoverable content: a body that is not the expected
// shape, or a tool call missing its function name. Payload carries the
// offending data (truncated) so callers can diagnose precisely.
type InvalidResponseDataError struct {
	Message string
	Payload string
}

func (e *InvalidResponseDataError) Error() string {
	if e.Payload == "" {
		return fmt.Sprintf("invalid response data: %s", e.Message)
	}
	return fmt.Sprintf("invalid response data: %s: %s", e.Message, e.Payload)
}

func (e *InvalidResponseDataError) Unwrap() error { return ErrInvalidResponseData }

// APICallError is a typed transport/upstream failure: a non-2xx HTTP response
// decoded from the service's error envelope {error: {message, type, param,
// code}}, or a plain-string error body.
type APICallError struct {
	StatusCode int
	URL        string

	// Fields from the wire error envelope.
	Message string
	Kind    string // The envelope's "type" field
	Param   string
	Code    string
}

func (e *APICallError) Error() string {
	message := e.Message
	if message == "" {
		message = "request failed"
	}
	return fmt.Sprintf("api call error (status %d): %s", e.StatusCode, message)
}
