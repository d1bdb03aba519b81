package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// ---- DoPostSync tests -------------------------------------------------------

// TestDoPostSync_Success verifies that a 200 response with valid JSON is
// unmarshaled into the output struct and returned without error.
func TestDoPostSync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	type response struct {
		Value int `json:"value"`
	}

	_, result, err := DoPostSync[response](
		context.Background(),
		server.Client(),
		server.URL,
		"test-key",
		map[string]string{"q": "test"},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result, got nil")
	}
	if result.Value != 42 {
		t.Errorf("expected Value=42, got %d", result.Value)
	}
}

// TestDoPostSync_Non2xxStatus verifies that a non-2xx HTTP status returns a
// typed *HTTPError carrying the status code and the raw body, so callers can
// decode the service's error envelope.
func TestDoPostSync_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad request"}`)
	}))
	defer server.Close()

	type response struct {
		Value int `json:"value"`
	}

	_, _, err := DoPostSync[response](
		context.Background(),
		server.Client(),
		server.URL,
		"",
		map[string]string{},
	)
	if err == nil {
		t.Fatal("expected error for 400 response, got nil")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", httpErr.StatusCode)
	}
	if !strings.Contains(string(httpErr.Body), "bad request") {
		t.Errorf("expected raw body to be preserved, got %q", httpErr.Body)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("expected error message to contain the status code, got: %v", err)
	}
}

// TestDoPostSync_UnmarshalError verifies that a 200 response with a body that
// cannot be unmarshaled into the output struct returns an error with a
// response preview.
func TestDoPostSync_UnmarshalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `"not json"`)
	}))
	defer server.Close()

	type response struct {
		Value int `json:"value"`
	}

	_, _, err := DoPostSync[response](
		context.Background(),
		server.Client(),
		server.URL,
		"",
		nil,
	)
	if err == nil {
		t.Fatal("expected unmarshal error, got nil")
	}
	if !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("expected unmarshal error, got: %v", err)
	}
}

// TestDoPostSync_AuthAndCustomHeaders verifies the Authorization header is set
// from the API key and that custom header options are applied last.
func TestDoPostSync_AuthAndCustomHeaders(t *testing.T) {
	var gotAuth, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Custom")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	type response struct{}

	_, _, err := DoPostSync[response](
		context.Background(),
		server.Client(),
		server.URL,
		"secret",
		nil,
		HeaderOption{Key: "X-Custom", Value: "yes"},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotCustom != "yes" {
		t.Errorf("expected custom header, got %q", gotCustom)
	}
}

// TestDoPostSync_NoAuthWithoutKey verifies that an empty API key sends no
// Authorization header, matching local servers that reject unexpected auth.
func TestDoPostSync_NoAuthWithoutKey(t *testing.T) {
	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	type response struct{}

	_, _, err := DoPostSync[response](context.Background(), server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sawAuth {
		t.Error("expected no Authorization header for an empty API key")
	}
}

// TestDoPostSync_ContextCancellation verifies that a canceled context aborts
// the request with the context error.
func TestDoPostSync_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	type response struct{}

	_, _, err := DoPostSync[response](ctx, server.Client(), server.URL, "", nil)
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got: %v", err)
	}
}
