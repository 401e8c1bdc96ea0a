// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package common

import (
	"time"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/kagenti/agent-operator/internal/failure"
)

// Standard requeue intervals for controllers.
const (
	// RequeueIntervalShort is used for quick retries after transient errors.
	RequeueIntervalShort = 10 * time.Second

	// RequeueIntervalMedium is used for polling workload readiness.
	RequeueIntervalMedium = 30 * time.Second

	// RequeueIntervalLong bounds the wait when an attempt is still in flight.
	RequeueIntervalLong = 1 * time.Minute

	// RequeueIntervalVeryLong caps exponential backoff.
	RequeueIntervalVeryLong = 5 * time.Minute
)

// RequeueResult returns a ctrl.Result for requeuing after the specified duration.
func RequeueResult(after time.Duration) ctrl.Result {
	return ctrl.Result{RequeueAfter: after}
}

// RequeueShort returns a result for quick retry.
func RequeueShort() ctrl.Result {
	return ctrl.Result{RequeueAfter: RequeueIntervalShort}
}

// RequeueMedium returns a result for medium-term retry.
func RequeueMedium() ctrl.Result {
	return ctrl.Result{RequeueAfter: RequeueIntervalMedium}
}

// NoRequeue returns a result indicating no requeue needed.
func NoRequeue() ctrl.Result {
	return ctrl.Result{}
}

// RetryDelay returns the backoff before retrying err after retryCount prior
// failures. Zero means err is permanent.
func RetryDelay(err error, retryCount int) time.Duration {
	return failure.GetRequeueDelay(err, failure.RetryConfig{
		BaseDelay:  RequeueIntervalShort,
		MaxDelay:   RequeueIntervalVeryLong,
		RetryCount: retryCount,
	})
}

// RequeueForError returns an appropriate requeue result based on the error type.
// It uses exponential backoff for transient errors.
func RequeueForError(err error, retryCount int) ctrl.Result {
	delay := RetryDelay(err, retryCount)
	if delay == 0 {
		// Permanent errors wait for a spec change
		return NoRequeue()
	}
	return ctrl.Result{RequeueAfter: delay}
}

// ShouldRequeueForError returns true if the error warrants a requeue.
// Permanent errors (NotFound, Auth, Build, Validation) return false.
func ShouldRequeueForError(err error) bool {
	return failure.IsRetryable(err)
}
