package shopify

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput is wrapped by errors caused by malformed local input,
	// such as an unparseable JSON body or callback timestamp.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidShop is returned when a shop name cannot be normalized into a
	// myshopify.com host.
	ErrInvalidShop = errors.New("invalid shop domain")
)

// SecurityCheckFailure reports a callback that failed HMAC, nonce, shop or
// timestamp verification. It is terminal for the callback.
type SecurityCheckFailure struct {
	Property string
	Expected string
	Received string
}

func (e *SecurityCheckFailure) Error() string {
	return fmt.Sprintf(
		"security check failed on %q: expected %q, received %q",
		e.Property, e.Expected, e.Received,
	)
}

// MissingParameterError is returned when a builder is finalized without a
// mandatory field.
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Parameter)
}

// MissingAttributeError is returned when a response lacks a documented
// top-level JSON attribute.
type MissingAttributeError struct {
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("response is missing expected attribute %q", e.Attribute)
}

// TransportError wraps a failed HTTP exchange: either the request never
// completed (Err set) or the server answered with a non-2xx status.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf(
		"%s %s: Shopify API error (status %d %s): %s",
		e.Method, e.URL, e.StatusCode, e.Status, e.Body,
	)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
