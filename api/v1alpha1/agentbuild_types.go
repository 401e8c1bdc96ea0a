// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// AgentBuildSpec defines the desired state of AgentBuild.
// It is the canonical shape of an agent build-and-deploy intent.
type AgentBuildSpec struct {
	AgentSpec `json:",inline"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=ab
// +kubebuilder:printcolumn:name="Build",type=string,JSONPath=`.status.buildStatus.phase`
// +kubebuilder:printcolumn:name="Deploy",type=string,JSONPath=`.status.deployStatus.phase`
// +kubebuilder:printcolumn:name="Image",type=string,JSONPath=`.status.buildStatus.builtImage`,priority=1
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// AgentBuild is the Schema for the agentbuilds API
type AgentBuild struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AgentBuildSpec `json:"spec,omitempty"`
	Status AgentStatus    `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AgentBuildList contains a list of AgentBuild
type AgentBuildList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AgentBuild `json:"items"`
}

// Canonical implements AgentObject.
func (a *AgentBuild) Canonical() AgentSpec {
	return a.Spec.AgentSpec
}

// AgentStatus implements AgentObject.
func (a *AgentBuild) AgentStatus() *AgentStatus {
	return &a.Status
}

func init() {
	SchemeBuilder.Register(&AgentBuild{}, &AgentBuildList{})
}
