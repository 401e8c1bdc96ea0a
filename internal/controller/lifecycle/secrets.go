// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package lifecycle

import (
	"context"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/failure"
)

// ObjectLister lists the resources of one kind in a namespace.
type ObjectLister func(ctx context.Context, namespace string) ([]agentv1alpha1.AgentObject, error)

// credentialSecrets returns the names of the Secrets a build reads.
func credentialSecrets(b *agentv1alpha1.BuildSpec) []string {
	if b == nil {
		return nil
	}
	var names []string
	if b.SourceCredentials != nil && b.SourceCredentials.Name != "" {
		names = append(names, b.SourceCredentials.Name)
	}
	if b.ImageRepoCredentials != nil && b.ImageRepoCredentials.Name != "" {
		names = append(names, b.ImageRepoCredentials.Name)
	}
	return names
}

// ReferencesSecret reports whether spec reads the named Secret for credentials.
func ReferencesSecret(spec agentv1alpha1.AgentSpec, name string) bool {
	for _, n := range credentialSecrets(spec.Build) {
		if n == name {
			return true
		}
	}
	return false
}

// SecretRequests maps a Secret to the resources in its namespace that read it.
func SecretRequests(list ObjectLister) handler.MapFunc {
	return func(ctx context.Context, obj client.Object) []reconcile.Request {
		items, err := list(ctx, obj.GetNamespace())
		if err != nil {
			ctrl.LoggerFrom(ctx).Error(err, "Failed to list resources for secret", "secret", obj.GetName())
			return nil
		}
		var reqs []reconcile.Request
		for _, item := range items {
			if ReferencesSecret(item.Canonical(), obj.GetName()) {
				reqs = append(reqs, reconcile.Request{
					NamespacedName: types.NamespacedName{Namespace: item.GetNamespace(), Name: item.GetName()},
				})
			}
		}
		return reqs
	}
}

// credentialsVersion fingerprints the credential Secrets of the build as
// name=resourceVersion pairs. A missing Secret has an empty version.
func (p *pass) credentialsVersion(ctx context.Context) (string, error) {
	names := credentialSecrets(p.spec.Build)
	if len(names) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		secret := &corev1.Secret{}
		err := p.engine.Client.Get(ctx, types.NamespacedName{Namespace: p.obj.GetNamespace(), Name: name}, secret)
		switch {
		case apierrors.IsNotFound(err):
			parts = append(parts, name+"=")
		case err != nil:
			return "", err
		default:
			parts = append(parts, name+"="+secret.ResourceVersion)
		}
	}
	return strings.Join(parts, ","), nil
}

// credentialsChanged reports whether a credential failure may clear because
// a referenced Secret changed since the failed attempt read it.
func (p *pass) credentialsChanged(ctx context.Context) bool {
	bs := &p.status.BuildStatus
	switch failure.Kind(bs.ErrorKind) {
	case failure.KindAuth, failure.KindNotFound:
	default:
		return false
	}
	if len(credentialSecrets(p.spec.Build)) == 0 {
		return false
	}
	current, err := p.credentialsVersion(ctx)
	if err != nil {
		p.log.V(1).Info("Failed to read credential secrets", "error", err.Error())
		return false
	}
	return current != bs.CredentialsVersion
}
