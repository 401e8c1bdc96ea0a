// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ComponentType identifies which union member of a Component is set.
type ComponentType string

const (
	ComponentTypeAgent ComponentType = "Agent"
	ComponentTypeTool  ComponentType = "Tool"
)

// ComponentBuildSpec is the nested build section of a Component.
type ComponentBuildSpec struct {
	// +optional
	SourceRepository string `json:"sourceRepository,omitempty"`

	// +optional
	SourceRevision string `json:"sourceRevision,omitempty"`

	// +optional
	SourceSubfolder string `json:"sourceSubfolder,omitempty"`

	// +optional
	RepoUser string `json:"repoUser,omitempty"`

	// +optional
	SourceCredentials *corev1.LocalObjectReference `json:"sourceCredentials,omitempty"`

	// +optional
	BuildArgs []ParameterSpec `json:"buildArgs,omitempty"`

	// +optional
	BuildOutput *BuildOutput `json:"buildOutput,omitempty"`

	// +kubebuilder:default:=true
	// +optional
	CleanupAfterBuild *bool `json:"cleanupAfterBuild,omitempty"`
}

// BuildOutput names the image a Component build produces.
type BuildOutput struct {
	// +optional
	Image string `json:"image,omitempty"`

	// +optional
	ImageTag string `json:"imageTag,omitempty"`

	// +optional
	ImageRegistry string `json:"imageRegistry,omitempty"`

	// +optional
	ImageRepoCredentials *corev1.LocalObjectReference `json:"imageRepoCredentials,omitempty"`
}

// AgentComponent holds agent specific attributes.
type AgentComponent struct {
	// +optional
	Build *ComponentBuildSpec `json:"build,omitempty"`
}

// ToolComponent holds tool specific attributes.
type ToolComponent struct {
	// +optional
	Build *ComponentBuildSpec `json:"build,omitempty"`

	// ToolType is MCP or Utility.
	// +optional
	ToolType string `json:"toolType,omitempty"`
}

// ComponentImageSpec is the image section of the kubernetes deployer.
type ComponentImageSpec struct {
	// +optional
	Image string `json:"image,omitempty"`

	// +optional
	ImageTag string `json:"imageTag,omitempty"`

	// +optional
	ImageRegistry string `json:"imageRegistry,omitempty"`

	// +optional
	ImagePullPolicy corev1.PullPolicy `json:"imagePullPolicy,omitempty"`

	// +optional
	ImagePullSecrets []corev1.LocalObjectReference `json:"imagePullSecrets,omitempty"`
}

// KubernetesSpec deploys a Component as a Deployment and Service.
type KubernetesSpec struct {
	// +optional
	ImageSpec ComponentImageSpec `json:"imageSpec,omitempty"`

	// +optional
	Resources corev1.ResourceRequirements `json:"resources,omitempty"`

	// +optional
	ContainerPorts []corev1.ContainerPort `json:"containerPorts,omitempty"`

	// +optional
	ServicePorts []corev1.ServicePort `json:"servicePorts,omitempty"`

	// +kubebuilder:default:="ClusterIP"
	// +optional
	ServiceType corev1.ServiceType `json:"serviceType,omitempty"`
}

// DeployerSpec defines how a Component is deployed.
type DeployerSpec struct {
	// +optional
	Kubernetes *KubernetesSpec `json:"kubernetes,omitempty"`

	// Name of the workload.
	// +optional
	Name string `json:"name,omitempty"`

	// +optional
	Env []corev1.EnvVar `json:"env,omitempty"`

	// +optional
	DeployAfterBuild bool `json:"deployAfterBuild,omitempty"`
}

// ComponentSpec defines the desired state of Component.
type ComponentSpec struct {
	// Only one of agent or tool may be set.
	// +optional
	Agent *AgentComponent `json:"agent,omitempty"`

	// +optional
	Tool *ToolComponent `json:"tool,omitempty"`

	// +optional
	Deployer DeployerSpec `json:"deployer,omitempty"`

	// +optional
	Description string `json:"description,omitempty"`

	// +optional
	Suspend bool `json:"suspend,omitempty"`

	// +kubebuilder:default:="Retain"
	// +optional
	DeletionPolicy DeletionPolicy `json:"deletionPolicy,omitempty"`
}

// ComponentStatus defines the observed state of Component.
type ComponentStatus struct {
	// +optional
	ComponentType ComponentType `json:"componentType,omitempty"`

	AgentStatus `json:",inline"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Type",type=string,JSONPath=`.status.componentType`
// +kubebuilder:printcolumn:name="Build",type=string,JSONPath=`.status.buildStatus.phase`
// +kubebuilder:printcolumn:name="Deploy",type=string,JSONPath=`.status.deployStatus.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Component is the Schema for the components API
type Component struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ComponentSpec   `json:"spec,omitempty"`
	Status ComponentStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ComponentList contains a list of Component
type ComponentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Component `json:"items"`
}

// AgentStatus implements AgentObject.
func (c *Component) AgentStatus() *AgentStatus {
	return &c.Status.AgentStatus
}

func init() {
	SchemeBuilder.Register(&Component{}, &ComponentList{})
}
