package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrMalformedResponse is wrapped when a response body cannot be decoded
	// or does not have the expected page shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInvalidQuery is returned before any request is made when the
	// query parameters are out of range.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrBackoffActive is wrapped when a request is refused locally
	// because a Retry-After back-off has not elapsed yet.
	ErrBackoffActive = errors.New("rate limit back-off active")
)

// TransportError is the failure of a single listing request, either on the
// network, on a non-2xx status or on an unreadable body.
type TransportError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("transport %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		// client, decode and unexpected failures repeat identically
		return false
	}
}
