package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is wrapped by errors for bodies that do not decode
// or fail validation.
var ErrMalformedResponse = errors.New("malformed response")

// NetworkError reports a transport failure, or 5xx responses that persisted
// through every retry. For the latter Cause is an *HTTPError.
type NetworkError struct {
	Method   string
	URL      string
	Attempts int
	Cause    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s failed after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// HTTPError is a non-2xx response. Body is the raw response text.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Temporary reports whether the status is worth retrying.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// DomainError is raised before any network call and never retried.
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

const (
	CodeEmptyCart          = "empty_cart"
	CodeCheckoutInProgress = "checkout_in_progress"
	CodeDuplicateUser      = "duplicate_user"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidInput       = "invalid_input"
)

func (e *DomainError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
