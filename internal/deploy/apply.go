// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package deploy

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

// progressDeadlineExceeded is the Progressing condition reason of a stuck rollout.
const progressDeadlineExceeded = "ProgressDeadlineExceeded"

// Applier writes synthesized descriptors to the cluster.
type Applier struct {
	client client.Client
}

// NewApplier creates an Applier.
func NewApplier(c client.Client) *Applier {
	return &Applier{client: c}
}

// ApplyResult reports what Apply changed.
type ApplyResult struct {
	Deployment controllerutil.OperationResult
	Service    controllerutil.OperationResult
}

// Changed reports whether either object was created or updated.
func (r ApplyResult) Changed() bool {
	return r.Deployment != controllerutil.OperationResultNone || r.Service != controllerutil.OperationResultNone
}

// Apply creates or updates the Deployment and Service by name. Objects that
// already carry the descriptor's spec hash are left untouched. Existing objects
// written for another resource, or by anyone else, fail with ErrOwnershipConflict.
func (a *Applier) Apply(ctx context.Context, d *Descriptors) (ApplyResult, error) {
	var res ApplyResult
	owner := NewOwnershipChecker(d.Owner)

	want := d.Deployment
	dep := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: want.Name, Namespace: want.Namespace}}
	op, err := controllerutil.CreateOrUpdate(ctx, a.client, dep, func() error {
		if r := owner.Check(dep); !r.IsAvailable() {
			return owner.ConflictError("Deployment", want.Name, r)
		}
		dep.Labels = mergeMap(dep.Labels, want.Labels)
		dep.Annotations = mergeMap(dep.Annotations, want.Annotations)
		if dep.Spec.Selector == nil {
			dep.Spec.Selector = want.Spec.Selector.DeepCopy()
		}
		dep.Spec.Replicas = want.Spec.Replicas
		if dep.Spec.Template.Annotations[agentv1alpha1.AnnotationSpecHash] != d.SpecHash {
			dep.Spec.Template = *want.Spec.Template.DeepCopy()
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("apply deployment %s/%s: %w", want.Namespace, want.Name, err)
	}
	res.Deployment = op

	wantSvc := d.Service
	svc := &corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: wantSvc.Name, Namespace: wantSvc.Namespace}}
	op, err = controllerutil.CreateOrUpdate(ctx, a.client, svc, func() error {
		if r := owner.Check(svc); !r.IsAvailable() {
			return owner.ConflictError("Service", wantSvc.Name, r)
		}
		current := svc.Annotations[agentv1alpha1.AnnotationSpecHash]
		svc.Labels = mergeMap(svc.Labels, wantSvc.Labels)
		svc.Annotations = mergeMap(svc.Annotations, wantSvc.Annotations)
		if current != d.SpecHash {
			svc.Spec.Type = wantSvc.Spec.Type
			svc.Spec.Selector = copyMap(wantSvc.Spec.Selector)
			svc.Spec.Ports = append([]corev1.ServicePort(nil), wantSvc.Spec.Ports...)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("apply service %s/%s: %w", wantSvc.Namespace, wantSvc.Name, err)
	}
	res.Service = op

	return res, nil
}

// Delete removes the Service and Deployment named name when they were written
// for t. Missing objects and objects owned by anyone else are left alone.
// It reports whether anything was deleted.
func (a *Applier) Delete(ctx context.Context, t Target, name string) (bool, error) {
	owner := NewOwnershipChecker(t)
	key := types.NamespacedName{Namespace: t.Namespace, Name: name}
	deleted := false

	service := &corev1.Service{}
	ok, err := a.deleteOwned(ctx, owner, key, service)
	if err != nil {
		return deleted, fmt.Errorf("delete service %s: %w", key, err)
	}
	deleted = deleted || ok

	deployment := &appsv1.Deployment{}
	ok, err = a.deleteOwned(ctx, owner, key, deployment, client.PropagationPolicy(metav1.DeletePropagationBackground))
	if err != nil {
		return deleted, fmt.Errorf("delete deployment %s: %w", key, err)
	}
	return deleted || ok, nil
}

func (a *Applier) deleteOwned(ctx context.Context, owner *OwnershipChecker, key types.NamespacedName, obj client.Object, opts ...client.DeleteOption) (bool, error) {
	if err := a.client.Get(ctx, key, obj); err != nil {
		return false, client.IgnoreNotFound(err)
	}
	if r := owner.Check(obj); !r.Owned {
		return false, nil
	}
	if err := a.client.Delete(ctx, obj, opts...); err != nil {
		return false, client.IgnoreNotFound(err)
	}
	return true, nil
}

// Readiness is the observed rollout state of a Deployment.
type Readiness struct {
	Found           bool
	Ready           bool
	Failed          bool
	DesiredReplicas int32
	ReadyReplicas   int32
	Message         string
}

// Readiness reports whether the named Deployment has rolled out.
func (a *Applier) Readiness(ctx context.Context, namespace, name string) (*Readiness, error) {
	deployment := &appsv1.Deployment{}
	if err := a.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, deployment); err != nil {
		if apierrors.IsNotFound(err) {
			return &Readiness{Message: "deployment not found"}, nil
		}
		return nil, err
	}
	return deploymentReadiness(deployment), nil
}

func deploymentReadiness(d *appsv1.Deployment) *Readiness {
	desired := int32(1)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}
	r := &Readiness{
		Found:           true,
		DesiredReplicas: desired,
		ReadyReplicas:   d.Status.ReadyReplicas,
	}

	for _, c := range d.Status.Conditions {
		if c.Type == appsv1.DeploymentProgressing && c.Status == corev1.ConditionFalse {
			r.Message = c.Message
			r.Failed = c.Reason == progressDeadlineExceeded
		}
	}

	switch {
	case r.Failed:
	case d.Status.ObservedGeneration < d.Generation:
		r.Message = "waiting for rollout to be observed"
	case d.Status.UpdatedReplicas < desired:
		r.Message = fmt.Sprintf("%d of %d replicas updated", d.Status.UpdatedReplicas, desired)
	case d.Status.ReadyReplicas < desired:
		r.Message = fmt.Sprintf("%d of %d replicas ready", d.Status.ReadyReplicas, desired)
	default:
		r.Ready = true
		r.Message = fmt.Sprintf("%d of %d replicas ready", d.Status.ReadyReplicas, desired)
	}
	return r
}

func mergeMap(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
