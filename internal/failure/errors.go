// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package failure defines the typed errors surfaced by the source fetcher,
// image builder, deployment synthesizer and reconcilers, and the requeue
// policy derived from them.
package failure

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a failure. The string value is written to status.
type Kind string

const (
	KindAuth       Kind = "AuthError"
	KindNotFound   Kind = "NotFoundError"
	KindNetwork    Kind = "NetworkError"
	KindBuild      Kind = "BuildError"
	KindPush       Kind = "PushError"
	KindValidation Kind = "ValidationError"

	// KindUnknown is reported for errors that were never classified.
	KindUnknown Kind = "UnknownError"
)

// Retryable reports whether failures of this kind may clear without a spec change.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindPush, KindUnknown:
		return true
	default:
		return false
	}
}

// Sentinel errors matched with errors.Is against any *Error of the same kind.
var (
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network failure")
	ErrBuild      = errors.New("build failed")
	ErrPush       = errors.New("push failed")
	ErrValidation = errors.New("invalid spec")
)

// Error carries a Kind with the operation that failed and its cause.
type Error struct {
	Kind Kind
	// Op names the step, e.g. "fetch source" or "push image".
	Op string
	// LogRef locates a captured build log, if one exists.
	LogRef string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindAuth:
		return ErrAuth
	case KindNotFound:
		return ErrNotFound
	case KindNetwork:
		return ErrNetwork
	case KindBuild:
		return ErrBuild
	case KindPush:
		return ErrPush
	case KindValidation:
		return ErrValidation
	default:
		return nil
	}
}

// New creates an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Auth wraps err as an AuthError.
func Auth(op string, err error) *Error { return New(KindAuth, op, err) }

// NotFound wraps err as a NotFoundError.
func NotFound(op string, err error) *Error { return New(KindNotFound, op, err) }

// Network wraps err as a NetworkError.
func Network(op string, err error) *Error { return New(KindNetwork, op, err) }

// Push wraps err as a PushError.
func Push(op string, err error) *Error { return New(KindPush, op, err) }

// Build wraps err as a BuildError with the build log location.
func Build(op, logRef string, err error) *Error {
	return &Error{Kind: KindBuild, Op: op, LogRef: logRef, Err: err}
}

// Validation creates a ValidationError from a formatted message.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, "validate", fmt.Errorf(format, args...))
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// LogRefOf returns the build log reference carried by err, if any.
func LogRefOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.LogRef
	}
	return ""
}

// IsRetryable reports whether err may clear on its own.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err).Retryable()
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// FromHTTPStatus classifies a non-2xx response from a source host or registry.
func FromHTTPStatus(op string, code int, status string) *Error {
	err := fmt.Errorf("unexpected HTTP status: %s", status)
	switch {
	case code == 401 || code == 403:
		return Auth(op, err)
	case code == 404 || code == 410:
		return NotFound(op, err)
	default:
		return Network(op, err)
	}
}

// RetryConfig holds configuration for requeue backoff.
type RetryConfig struct {
	// BaseDelay is the initial delay before retry
	BaseDelay time.Duration
	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration
	// RetryCount tracks the current retry count (for exponential backoff)
	RetryCount int
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		BaseDelay: 10 * time.Second,
		MaxDelay:  5 * time.Minute,
	}
}

// calculateExponentialDelay computes exponential backoff delay capped at maxDelay
func calculateExponentialDelay(baseDelay, maxDelay time.Duration, retryCount, maxShift int) time.Duration {
	delay := baseDelay * time.Duration(1<<min(max(retryCount, 0), maxShift))
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// GetRequeueDelay returns how long to wait before the next attempt.
// Zero means the error is permanent and only a spec change should retry.
func GetRequeueDelay(err error, cfg RetryConfig) time.Duration {
	if err == nil || !IsRetryable(err) {
		return 0
	}
	return calculateExponentialDelay(cfg.BaseDelay, cfg.MaxDelay, cfg.RetryCount, 5)
}

// containsSensitivePattern checks if the message contains any sensitive patterns
func containsSensitivePattern(msg string) bool {
	sensitivePatterns := []string{
		"token", "secret", "password", "credential", "api_key", "apikey",
		"bearer", "authorization", "private-token",
	}
	lowerMsg := strings.ToLower(msg)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerMsg, pattern) {
			return true
		}
	}
	return false
}

// getGenericErrorMessage returns a generic error message based on error type
func getGenericErrorMessage(err error) string {
	switch KindOf(err) {
	case KindAuth:
		return "authentication failed - check credentials"
	case KindNotFound:
		return "repository, revision or subfolder not found"
	case KindPush:
		return "image push failed - check registry credentials"
	default:
		return "operation failed - check operator logs for details"
	}
}

// Sanitize removes potentially sensitive information from error messages
// before storing them in status or events.
func Sanitize(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	const maxLen = 512
	if len(msg) > maxLen {
		msg = msg[:maxLen-3] + "..."
	}

	if containsSensitivePattern(msg) {
		return getGenericErrorMessage(err)
	}

	return msg
}
