// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/failure"
)

func TestValidate(t *testing.T) {
	base := func() agentv1alpha1.AgentSpec {
		return agentv1alpha1.AgentSpec{
			Build: &agentv1alpha1.BuildSpec{RepoURL: "github.com/acme/agents.git"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*agentv1alpha1.AgentSpec)
		wantErr string
	}{
		{
			name: "valid build",
		},
		{
			name: "prebuilt image without build",
			mutate: func(s *agentv1alpha1.AgentSpec) {
				s.Build = nil
				s.DeployAfterBuild = true
				s.Deploy = &agentv1alpha1.DeploySpec{Image: &agentv1alpha1.ImageSpec{Image: "acme/weather"}}
			},
		},
		{
			name:    "missing repo url",
			mutate:  func(s *agentv1alpha1.AgentSpec) { s.Build.RepoURL = " " },
			wantErr: "spec.build.repoUrl: Required value",
		},
		{
			name:    "absolute subfolder",
			mutate:  func(s *agentv1alpha1.AgentSpec) { s.Build.SourceSubfolder = "/etc" },
			wantErr: "spec.build.sourceSubfolder",
		},
		{
			name:    "subfolder escapes repository",
			mutate:  func(s *agentv1alpha1.AgentSpec) { s.Build.SourceSubfolder = "agents/../../x" },
			wantErr: "must be a relative path inside the repository",
		},
		{
			name:    "registry given as url",
			mutate:  func(s *agentv1alpha1.AgentSpec) { s.Build.ImageRegistry = "https://ghcr.io" },
			wantErr: "spec.build.imageRegistry",
		},
		{
			name:    "tag with digest",
			mutate:  func(s *agentv1alpha1.AgentSpec) { s.Build.ImageTag = "v1@sha256" },
			wantErr: "spec.build.imageTag",
		},
		{
			name: "invalid build arg name",
			mutate: func(s *agentv1alpha1.AgentSpec) {
				s.Build.BuildArgs = []agentv1alpha1.ParameterSpec{{Name: "1BAD=x"}}
			},
			wantErr: "spec.build.buildArgs[0].name",
		},
		{
			name: "deploy without anything to deploy",
			mutate: func(s *agentv1alpha1.AgentSpec) {
				s.Build = nil
				s.DeployAfterBuild = true
			},
			wantErr: "deployAfterBuild requires a build section or deploy.image",
		},
		{
			name:    "unknown deletion policy",
			mutate:  func(s *agentv1alpha1.AgentSpec) { s.DeletionPolicy = "Orphan" },
			wantErr: "spec.deletionPolicy: Unsupported value",
		},
		{
			name: "env with value and reference",
			mutate: func(s *agentv1alpha1.AgentSpec) {
				s.Deploy = &agentv1alpha1.DeploySpec{Env: []corev1.EnvVar{{
					Name:  "TOKEN",
					Value: "x",
					ValueFrom: &corev1.EnvVarSource{SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: "s"},
						Key:                  "token",
					}},
				}}}
			},
			wantErr: "spec.deploy.env[0].valueFrom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base()
			if tt.mutate != nil {
				tt.mutate(&spec)
			}
			err := Validate(spec)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, failure.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSpec_ReportsEveryError(t *testing.T) {
	errs := ValidateSpec(agentv1alpha1.AgentSpec{
		Build:          &agentv1alpha1.BuildSpec{ImageTag: "a:b"},
		DeletionPolicy: "Orphan",
	}, nil)
	assert.Len(t, errs, 3)
}

func TestValidateSplit_SeparatesBuildSection(t *testing.T) {
	spec := agentv1alpha1.AgentSpec{
		Build:          &agentv1alpha1.BuildSpec{RepoURL: "github.com/acme/agents.git", ImageTag: "a:b"},
		DeletionPolicy: "Orphan",
	}

	buildErr, otherErr := validateSplit(spec)
	require.Error(t, buildErr)
	require.Error(t, otherErr)
	assert.Contains(t, buildErr.Error(), "spec.build.imageTag")
	assert.NotContains(t, buildErr.Error(), "deletionPolicy")
	assert.Contains(t, otherErr.Error(), "spec.deletionPolicy")
	assert.NotContains(t, otherErr.Error(), "imageTag")

	spec.Build.ImageTag = "v1"
	buildErr, otherErr = validateSplit(spec)
	assert.NoError(t, buildErr)
	assert.Error(t, otherErr)
}

func TestValidateSplit_MissingBuildSectionIsNotABuildError(t *testing.T) {
	buildErr, otherErr := validateSplit(agentv1alpha1.AgentSpec{DeployAfterBuild: true})
	assert.NoError(t, buildErr)
	require.Error(t, otherErr)
	assert.Contains(t, otherErr.Error(), "deployAfterBuild requires")
}
