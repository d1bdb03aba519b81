package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestTypedErrorsUnwrapToSentinels verifies that each typed error matches its
// package sentinel through errors.Is, so callers can branch without knowing
// the concrete type.
func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&UnsupportedRoleError{Role: "narrator"}, ErrUnsupportedRole},
		{&UnsupportedContentPartError{Role: RoleUser, Part: ContentTypeAudio}, ErrUnsupportedContentPart},
		{&UnsupportedContentTypeError{MimeType: "audio/flac"}, ErrUnsupportedContentType},
		{&UnsupportedToolChoiceError{Choice: "sometimes"}, ErrUnsupportedToolChoice},
		{&InvalidResponseDataError{Message: "no message"}, ErrInvalidResponseData},
	}

	for _, test := range tests {
		if !errors.Is(test.err, test.sentinel) {
			t.Errorf("%T should match sentinel %v", test.err, test.sentinel)
		}
		if test.err.Error() == "" {
			t.Errorf("%T should have a non-empty message", test.err)
		}
	}
}

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("building request: %w", &UnsupportedRoleError{Role: "narrator"})

	if !errors.Is(wrapped, ErrUnsupportedRole) {
		t.Error("wrapped error should still match the sentinel")
	}

	var roleErr *UnsupportedRoleError
	if !errors.As(wrapped, &roleErr) {
		t.Fatal("wrapped error should still expose the concrete type")
	}
	if roleErr.Role != "narrator" {
		t.Errorf("expected role to survive wrapping, got %q", roleErr.Role)
	}
}

func TestAPICallError(t *testing.T) {
	callErr := &APICallError{
		StatusCode: 404,
		URL:        "http://localhost:11434/api/chat",
		Message:    `model "nope" not found`,
		Kind:       "not_found",
	}

	message := callErr.Error()
	if message == "" {
		t.Fatal("expected a non-empty error message")
	}
	for _, want := range []string{"404", "not found"} {
		if !strings.Contains(message, want) {
			t.Errorf("expected error message to mention %q, got %q", want, message)
		}
	}
}
