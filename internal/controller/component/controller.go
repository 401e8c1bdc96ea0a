// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package component implements the controller for the Component CRD. Components
// are reduced to the canonical agent spec and share the AgentBuild lifecycle.
package component

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	crcontroller "sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/controller"
	"github.com/kagenti/agent-operator/internal/controller/lifecycle"
	"github.com/kagenti/agent-operator/internal/deploy"
	"github.com/kagenti/agent-operator/internal/imagebuild"
)

// Kind is the resource kind reconciled here.
const Kind = "Component"

// ComponentReconciler reconciles a Component object.
type ComponentReconciler struct {
	client.Client
	Scheme    *runtime.Scheme
	Recorder  record.EventRecorder
	Builds    lifecycle.BuildRunner
	Workloads lifecycle.WorkloadApplier
	Logs      imagebuild.LogStore
	Metrics   lifecycle.DeployObserver
	Clock     clock.PassiveClock

	MaxConcurrentReconciles int

	engine *lifecycle.Engine
}

// +kubebuilder:rbac:groups=agent.kagenti.dev,resources=components,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=agent.kagenti.dev,resources=components/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=agent.kagenti.dev,resources=components/finalizers,verbs=update

func (r *ComponentReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	comp := &agentv1alpha1.Component{}
	if err := r.Get(ctx, req.NamespacedName, comp); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		logger.Error(err, "Failed to get Component")
		return ctrl.Result{}, err
	}

	return r.lifecycle().Reconcile(ctx, comp)
}

func (r *ComponentReconciler) lifecycle() *lifecycle.Engine {
	if r.engine == nil {
		workloads := r.Workloads
		if workloads == nil {
			workloads = deploy.NewApplier(r.Client)
		}
		r.engine = &lifecycle.Engine{
			Client:    r.Client,
			Recorder:  r.Recorder,
			Builds:    r.Builds,
			Workloads: workloads,
			Logs:      r.Logs,
			Metrics:   r.Metrics,
			Clock:     r.Clock,
			Kind:      Kind,
		}
	}
	return r.engine
}

// list returns the Components in namespace.
func (r *ComponentReconciler) list(ctx context.Context, namespace string) ([]agentv1alpha1.AgentObject, error) {
	var items agentv1alpha1.ComponentList
	if err := r.List(ctx, &items, client.InNamespace(namespace)); err != nil {
		return nil, err
	}
	out := make([]agentv1alpha1.AgentObject, 0, len(items.Items))
	for i := range items.Items {
		out = append(out, &items.Items[i])
	}
	return out, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *ComponentReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if r.Recorder == nil {
		r.Recorder = mgr.GetEventRecorderFor(controller.ControllerNameComponent)
	}

	mapFn := handler.EnqueueRequestsFromMapFunc(lifecycle.WorkloadRequests(Kind))
	return ctrl.NewControllerManagedBy(mgr).
		For(&agentv1alpha1.Component{}).
		Watches(&appsv1.Deployment{}, mapFn).
		Watches(&corev1.Service{}, mapFn).
		Watches(&corev1.Secret{}, handler.EnqueueRequestsFromMapFunc(lifecycle.SecretRequests(r.list))).
		WithOptions(crcontroller.Options{MaxConcurrentReconciles: r.MaxConcurrentReconciles}).
		Named(controller.ControllerNameComponent).
		Complete(r)
}
