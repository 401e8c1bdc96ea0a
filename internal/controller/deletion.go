// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package controller

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// DefaultRequeueAfter is the default requeue duration after a cleanup error
const DefaultRequeueAfter = 30 * time.Second

// CleanupStep releases one child of a resource being deleted.
type CleanupStep struct {
	Name string
	Fn   func(ctx context.Context) error
}

// DeletionHandler handles the standard deletion flow for resources
type DeletionHandler struct {
	Client        client.Client
	Log           logr.Logger
	Recorder      record.EventRecorder
	FinalizerName string
}

// NewDeletionHandler creates a new DeletionHandler
func NewDeletionHandler(c client.Client, log logr.Logger, recorder record.EventRecorder, finalizerName string) *DeletionHandler {
	return &DeletionHandler{
		Client:        c,
		Log:           log,
		Recorder:      recorder,
		FinalizerName: finalizerName,
	}
}

// HandleDeletion runs every step and removes the finalizer only when all of
// them succeed. NotFound errors count as success. Steps are run again on the
// next reconcile after a failure, so each must be idempotent.
func (h *DeletionHandler) HandleDeletion(ctx context.Context, obj client.Object, steps []CleanupStep) (ctrl.Result, error) {
	if !ShouldReconcileDeletion(obj, h.FinalizerName) {
		return ctrl.Result{}, nil
	}

	h.Log.Info("Handling deletion", "steps", len(steps))

	var errs []error
	for _, step := range steps {
		if step.Fn == nil {
			continue
		}
		if err := step.Fn(ctx); err != nil {
			if apierrors.IsNotFound(err) {
				h.Log.V(1).Info("Child already deleted", "step", step.Name)
				continue
			}
			h.Log.Error(err, "Cleanup step failed", "step", step.Name)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		RecordError(h.Recorder, obj, EventReasonDeleteFailed, err)
		return ctrl.Result{RequeueAfter: DefaultRequeueAfter}, nil
	}

	removed, err := RemoveFinalizerSafely(ctx, h.Client, obj, h.FinalizerName)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		h.Log.Error(err, "Failed to remove finalizer")
		return ctrl.Result{}, err
	}

	if removed {
		h.Log.Info("Finalizer removed")
		RecordSuccess(h.Recorder, obj, EventReasonFinalizerRemoved, "Finalizer removed successfully")
	}

	return ctrl.Result{}, nil
}
