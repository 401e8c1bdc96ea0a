// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

func setupTestScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, agentv1alpha1.AddToScheme(scheme))
	return scheme
}

func newAgentBuild(name string) *agentv1alpha1.AgentBuild {
	return &agentv1alpha1.AgentBuild{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec: agentv1alpha1.AgentBuildSpec{AgentSpec: agentv1alpha1.AgentSpec{
			Build: &agentv1alpha1.BuildSpec{RepoURL: "github.com/x/y.git"},
		}},
	}
}
