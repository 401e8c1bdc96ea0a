// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation/field"
	ctrl "sigs.k8s.io/controller-runtime"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/controller/lifecycle"
)

var componentlog = logf.Log.WithName("component-resource")

// SetupComponentWebhookWithManager registers the webhook for Component in the manager.
func SetupComponentWebhookWithManager(mgr ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(mgr).For(&agentv1alpha1.Component{}).
		WithValidator(&ComponentCustomValidator{}).
		Complete()
}

// +kubebuilder:webhook:path=/validate-agent-kagenti-dev-v1alpha1-component,mutating=false,failurePolicy=fail,sideEffects=None,groups=agent.kagenti.dev,resources=components,verbs=create;update,versions=v1alpha1,name=vcomponent-v1alpha1.kb.io,admissionReviewVersions=v1

// ComponentCustomValidator validates Component resources on create and update.
type ComponentCustomValidator struct{}

var _ webhook.CustomValidator = &ComponentCustomValidator{}

// ValidateCreate implements webhook.CustomValidator.
func (v *ComponentCustomValidator) ValidateCreate(_ context.Context, obj runtime.Object) (admission.Warnings, error) {
	component, ok := obj.(*agentv1alpha1.Component)
	if !ok {
		return nil, fmt.Errorf("expected a Component object but got %T", obj)
	}
	componentlog.V(1).Info("Validation for Component upon creation", "name", component.GetName())
	return validateComponent(component)
}

// ValidateUpdate implements webhook.CustomValidator.
func (v *ComponentCustomValidator) ValidateUpdate(_ context.Context, _, newObj runtime.Object) (admission.Warnings, error) {
	component, ok := newObj.(*agentv1alpha1.Component)
	if !ok {
		return nil, fmt.Errorf("expected a Component object for the newObj but got %T", newObj)
	}
	componentlog.V(1).Info("Validation for Component upon update", "name", component.GetName())
	if !component.DeletionTimestamp.IsZero() {
		return nil, nil
	}
	return validateComponent(component)
}

// ValidateDelete implements webhook.CustomValidator.
func (v *ComponentCustomValidator) ValidateDelete(context.Context, runtime.Object) (admission.Warnings, error) {
	return nil, nil
}

func validateComponent(c *agentv1alpha1.Component) (admission.Warnings, error) {
	var errs field.ErrorList
	specPath := field.NewPath("spec")

	// agent and tool are mutually exclusive
	if c.Spec.Agent != nil && c.Spec.Tool != nil {
		errs = append(errs, field.Forbidden(specPath.Child("tool"), "may not be set together with spec.agent"))
	}

	spec := c.Canonical()
	errs = append(errs, lifecycle.ValidateSpec(spec, specPath)...)
	if len(errs) > 0 {
		return nil, apierrors.NewInvalid(agentv1alpha1.GroupVersion.WithKind("Component").GroupKind(), c.Name, errs)
	}
	return warnings(spec), nil
}
