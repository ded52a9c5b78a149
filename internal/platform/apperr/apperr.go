// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Charadex.

It provides a rich error type that bridges the gap between low-level transport
errors (upstream API, storage) and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.
  - Upstream: Dedicated constructors for failures of the remote character API,
    so callers branch on a code instead of inspecting raw transport errors.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeRequestTimeout = "REQUEST_TIMEOUT"
	CodeRequestFailed  = "REQUEST_FAILED"
	CodeNetwork        = "NETWORK_ERROR"
	CodeDecode         = "DECODE_ERROR"
	CodeCanceled       = "CANCELED"
)

// AppError is the canonical error type for Charadex.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "REQUEST_TIMEOUT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// UpstreamStatus is the status returned by a remote API, when one was received.
	UpstreamStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the form or JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Character") // Returns "Character not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Upstream Errors

// RequestTimeout creates a 504 [AppError] for a remote call that exceeded its deadline.
func RequestTimeout(cause error) *AppError {
	return &AppError{
		Code:       CodeRequestTimeout,
		Message:    "Request timeout - please try again",
		HTTPStatus: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// RequestFailed creates a 502 [AppError] for a non-2xx upstream response.
func RequestFailed(upstreamStatus int) *AppError {
	return &AppError{
		Code:           CodeRequestFailed,
		Message:        fmt.Sprintf("API request failed (status %d)", upstreamStatus),
		HTTPStatus:     http.StatusBadGateway,
		UpstreamStatus: upstreamStatus,
	}
}

// UpstreamNotFound creates a 404 [AppError] for a remote resource that does not resolve.
func UpstreamNotFound(resource string) *AppError {
	err := NotFound(resource)
	err.UpstreamStatus = http.StatusNotFound
	return err
}

// Network creates a 502 [AppError] for a transport-level failure.
// The message carries the underlying error text.
func Network(cause error) *AppError {
	return &AppError{
		Code:       CodeNetwork,
		Message:    cause.Error(),
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Decode creates a 502 [AppError] for a malformed upstream payload.
func Decode(cause error) *AppError {
	return &AppError{
		Code:       CodeDecode,
		Message:    "Malformed response from API",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Canceled creates an [AppError] for a call abandoned by its caller.
func Canceled(cause error) *AppError {
	return &AppError{
		Code:       CodeCanceled,
		Message:    "Request canceled",
		HTTPStatus: 499,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// CodeOf returns the code of the [*AppError] in err's chain, or "" when there is none.
func CodeOf(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return ""
}
