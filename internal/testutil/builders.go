// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package testutil provides fixtures shared by the controller tests.
package testutil

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

// TestNamespace is the default namespace for fixtures.
const TestNamespace = "team1"

// Scheme returns a scheme with the core and agent types registered.
func Scheme() *runtime.Scheme {
	s := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(s); err != nil {
		panic(err)
	}
	if err := agentv1alpha1.AddToScheme(s); err != nil {
		panic(err)
	}
	return s
}

// NewFakeClient returns a fake client holding objs, with the status
// subresource enabled for both agent kinds.
func NewFakeClient(objs ...client.Object) client.Client {
	return fake.NewClientBuilder().
		WithScheme(Scheme()).
		WithObjects(objs...).
		WithStatusSubresource(&agentv1alpha1.AgentBuild{}, &agentv1alpha1.Component{}).
		Build()
}

// AgentBuildBuilder builds AgentBuild resources for testing.
type AgentBuildBuilder struct {
	ab *agentv1alpha1.AgentBuild
}

// NewAgentBuildBuilder creates a builder for an AgentBuild with no build section.
func NewAgentBuildBuilder(name string) *AgentBuildBuilder {
	return &AgentBuildBuilder{ab: &agentv1alpha1.AgentBuild{
		ObjectMeta: metav1.ObjectMeta{
			Name:       name,
			Namespace:  TestNamespace,
			Generation: 1,
		},
	}}
}

// WithSource adds a build section fetching repo at revision.
func (b *AgentBuildBuilder) WithSource(repo, revision string) *AgentBuildBuilder {
	b.build().RepoURL = repo
	b.build().Revision = revision
	return b
}

// WithSourceCredentials sets the Secret holding the repository token.
func (b *AgentBuildBuilder) WithSourceCredentials(secret string) *AgentBuildBuilder {
	b.build().SourceCredentials = &corev1.LocalObjectReference{Name: secret}
	return b
}

// WithPrebuiltImage deploys image without a build.
func (b *AgentBuildBuilder) WithPrebuiltImage(image, tag string) *AgentBuildBuilder {
	b.deploy().Image = &agentv1alpha1.ImageSpec{Image: image, ImageTag: tag}
	return b
}

// WithDeploy turns on deployAfterBuild.
func (b *AgentBuildBuilder) WithDeploy() *AgentBuildBuilder {
	b.ab.Spec.DeployAfterBuild = true
	return b
}

// WithEnv appends a literal environment variable.
func (b *AgentBuildBuilder) WithEnv(name, value string) *AgentBuildBuilder {
	b.deploy().Env = append(b.deploy().Env, corev1.EnvVar{Name: name, Value: value})
	return b
}

// WithDeletionPolicy sets the deletion policy.
func (b *AgentBuildBuilder) WithDeletionPolicy(p agentv1alpha1.DeletionPolicy) *AgentBuildBuilder {
	b.ab.Spec.DeletionPolicy = p
	return b
}

// Build returns the AgentBuild.
func (b *AgentBuildBuilder) Build() *agentv1alpha1.AgentBuild {
	return b.ab.DeepCopy()
}

func (b *AgentBuildBuilder) build() *agentv1alpha1.BuildSpec {
	if b.ab.Spec.Build == nil {
		b.ab.Spec.Build = &agentv1alpha1.BuildSpec{}
	}
	return b.ab.Spec.Build
}

func (b *AgentBuildBuilder) deploy() *agentv1alpha1.DeploySpec {
	if b.ab.Spec.Deploy == nil {
		b.ab.Spec.Deploy = &agentv1alpha1.DeploySpec{}
	}
	return b.ab.Spec.Deploy
}

// NewTokenSecret returns a Secret with a token key.
func NewTokenSecret(name, token string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: TestNamespace},
		Data:       map[string][]byte{"token": []byte(token)},
	}
}
