// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package controller

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"

	"github.com/kagenti/agent-operator/internal/failure"
)

// RecordError records a warning event with a sanitized error message.
// A nil recorder is ignored.
func RecordError(recorder record.EventRecorder, obj runtime.Object, reason string, err error) {
	if recorder == nil {
		return
	}
	recorder.Event(obj, corev1.EventTypeWarning, reason, failure.Sanitize(err))
}

// RecordSuccess records a normal event.
func RecordSuccess(recorder record.EventRecorder, obj runtime.Object, reason, message string) {
	if recorder == nil {
		return
	}
	recorder.Event(obj, corev1.EventTypeNormal, reason, message)
}

// RecordSuccessf records a normal event with a formatted message.
func RecordSuccessf(recorder record.EventRecorder, obj runtime.Object, reason, format string, args ...any) {
	if recorder == nil {
		return
	}
	recorder.Eventf(obj, corev1.EventTypeNormal, reason, format, args...)
}
