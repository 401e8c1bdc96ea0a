// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package v1alpha1 holds the admission webhooks for the agent v1alpha1 API.
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

var agentbuildlog = logf.Log.WithName("agentbuild-resource")

// SetupAgentBuildWebhookWithManager registers the webhook for AgentBuild in the manager.
func SetupAgentBuildWebhookWithManager(mgr ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(mgr).For(&agentv1alpha1.AgentBuild{}).
		WithValidator(&AgentBuildCustomValidator{}).
		Complete()
}

// +kubebuilder:webhook:path=/validate-agent-kagenti-dev-v1alpha1-agentbuild,mutating=false,failurePolicy=fail,sideEffects=None,groups=agent.kagenti.dev,resources=agentbuilds,verbs=create;update,versions=v1alpha1,name=vagentbuild-v1alpha1.kb.io,admissionReviewVersions=v1

// AgentBuildCustomValidator rejects AgentBuild specs the controller could never reconcile.
type AgentBuildCustomValidator struct{}

var _ webhook.CustomValidator = &AgentBuildCustomValidator{}

// ValidateCreate implements webhook.CustomValidator.
func (v *AgentBuildCustomValidator) ValidateCreate(_ context.Context, obj runtime.Object) (admission.Warnings, error) {
	ab, ok := obj.(*agentv1alpha1.AgentBuild)
	if !ok {
		return nil, fmt.Errorf("expected an AgentBuild object but got %T", obj)
	}
	agentbuildlog.V(1).Info("Validation for AgentBuild upon creation", "name", ab.GetName())
	return validateAgentBuild(ab)
}

// ValidateUpdate implements webhook.CustomValidator.
func (v *AgentBuildCustomValidator) ValidateUpdate(_ context.Context, _, newObj runtime.Object) (admission.Warnings, error) {
	ab, ok := newObj.(*agentv1alpha1.AgentBuild)
	if !ok {
		return nil, fmt.Errorf("expected an AgentBuild object for the newObj but got %T", newObj)
	}
	agentbuildlog.V(1).Info("Validation for AgentBuild upon update", "name", ab.GetName())
	if !ab.DeletionTimestamp.IsZero() {
		return nil, nil
	}
	return validateAgentBuild(ab)
}

// ValidateDelete implements webhook.CustomValidator.
func (v *AgentBuildCustomValidator) ValidateDelete(context.Context, runtime.Object) (admission.Warnings, error) {
	return nil, nil
}

func validateAgentBuild(ab *agentv1alpha1.AgentBuild) (admission.Warnings, error) {
	spec := ab.Canonical()
	errs := lifecycle.ValidateSpec(spec, field.NewPath("spec"))
	if len(errs) > 0 {
		return nil, apierrors.NewInvalid(agentv1alpha1.GroupVersion.WithKind("AgentBuild").GroupKind(), ab.Name, errs)
	}
	return warnings(spec), nil
}

// warnings flags accepted specs that are likely mistakes.
func warnings(spec agentv1alpha1.AgentSpec) admission.Warnings {
	var w admission.Warnings
	if spec.Build != nil && spec.HasPrebuiltImage() {
		w = append(w, "spec.deploy.image is ignored while a build section is set")
	}
	if spec.Build != nil && spec.Build.InsecureRegistry {
		w = append(w, "spec.build.insecureRegistry pushes over plain HTTP")
	}
	return w
}
