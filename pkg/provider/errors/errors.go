// Package errors defines the single error shape returned by every provider
// adapter and by the generation engine.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on failure mode without
// type-asserting a family of concrete structs.
type Kind string

const (
	// KindProvider is a generic error surfaced by a vendor API (non-2xx
	// response that doesn't fit a more specific kind).
	KindProvider Kind = "provider"

	// KindRateLimit indicates the vendor rejected the request for rate
	// limiting; RetryAfter may be populated from a Retry-After header.
	KindRateLimit Kind = "rate-limit"

	// KindValidation indicates a request failed local validation before
	// any network call was made (malformed request shape, e.g. empty
	// messages, duplicate tool names, a negative step budget).
	KindValidation Kind = "validation"

	// KindModelNotFound indicates the requested ModelId has no registered
	// adapter, or its alias does not resolve to one.
	KindModelNotFound Kind = "model-not-found"

	// KindCapabilityMismatch indicates the resolved adapter exists but
	// cannot serve something the request asks for (tool calling,
	// structured output, image input, ...).
	KindCapabilityMismatch Kind = "capability-mismatch"

	// KindToolExecution indicates a locally-executed tool returned an
	// error.
	KindToolExecution Kind = "tool-execution"

	// KindStream indicates a failure while decoding a streaming response.
	KindStream Kind = "stream"

	// KindTimeout indicates a request exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindCanceled indicates the caller's context was canceled.
	KindCanceled Kind = "canceled"

	// KindAuth indicates missing or rejected credentials.
	KindAuth Kind = "auth"
)

// Error is the single error type returned by pkg/providers, pkg/engine, and
// pkg/cache. Kind discriminates the failure mode; the remaining fields are
// populated as far as the failure mode allows.
type Error struct {
	Kind Kind

	// Provider is the adapter name that produced the error ("openai",
	// "anthropic", ...). Empty for errors raised before a provider was
	// selected.
	Provider string

	Message string

	// Code is the vendor's own error code string, when one was returned.
	Code string

	// HTTPStatus is the response status code, when the error originated
	// from an HTTP response.
	HTTPStatus int

	// RetryAfter is the vendor-suggested backoff, parsed from a
	// Retry-After header, for KindRateLimit errors.
	RetryAfter *int

	Cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Provider != "" {
		msg = fmt.Sprintf("%s[%s]: %s", e.Kind, e.Provider, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, letting
// callers write errors.Is(err, &errors.Error{Kind: KindRateLimit}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, provider, message string) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message}
}

func Wrap(kind Kind, provider, message string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message, Cause: cause}
}

// NewProviderError builds a KindProvider error from an HTTP response.
func NewProviderError(provider string, httpStatus int, code, message string, cause error) *Error {
	return &Error{Kind: KindProvider, Provider: provider, HTTPStatus: httpStatus, Code: code, Message: message, Cause: cause}
}

// NewRateLimitError builds a KindRateLimit error, optionally carrying the
// vendor's Retry-After hint in seconds.
func NewRateLimitError(provider, message string, retryAfterSeconds *int, cause error) *Error {
	return &Error{Kind: KindRateLimit, Provider: provider, Message: message, RetryAfter: retryAfterSeconds, Cause: cause}
}

// NewValidationError builds a KindValidation error for request-construction
// failures that never reach the network.
func NewValidationError(message string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: message, Cause: cause}
}

// NewModelNotFoundError builds a KindModelNotFound error: modelName has no
// registered adapter, or no alias resolves it to one.
func NewModelNotFoundError(modelName string) *Error {
	return &Error{Kind: KindModelNotFound, Message: "no adapter registered for model: " + modelName}
}

// NewCapabilityMismatchError builds a KindCapabilityMismatch error: the
// resolved adapter for provider cannot serve something the request asked
// for.
func NewCapabilityMismatchError(provider, message string) *Error {
	return &Error{Kind: KindCapabilityMismatch, Provider: provider, Message: message}
}

// NewToolExecutionError builds a KindToolExecution error.
func NewToolExecutionError(toolName, toolCallID, message string, cause error) *Error {
	return &Error{
		Kind:    KindToolExecution,
		Message: fmt.Sprintf("tool %q (call %s): %s", toolName, toolCallID, message),
		Cause:   cause,
	}
}

// NewStreamError builds a KindStream error.
func NewStreamError(provider, message string, cause error) *Error {
	return &Error{Kind: KindStream, Provider: provider, Message: message, Cause: cause}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsRetryable reports whether the error kind is one the retry handler
// should act on: rate limiting, transient provider failures, and timeouts.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindRateLimit, KindTimeout:
		return true
	case KindProvider:
		return e.HTTPStatus == 0 || e.HTTPStatus >= 500 || e.HTTPStatus == 429
	default:
		return false
	}
}
