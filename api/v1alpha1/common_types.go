// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

const (
	// DefaultRevision is used when a build does not name a revision.
	DefaultRevision = "main"

	// DefaultImageTag is used when a build does not name a tag.
	DefaultImageTag = "latest"

	// DefaultImageRegistry is the in-cluster registry images are pushed to by default.
	DefaultImageRegistry = "registry.cr-system.svc.cluster.local:5000"

	// DefaultPort is the container and service port used when none are declared.
	DefaultPort int32 = 8000
)

// BuildPhase is the coarse phase of a build reported in status.
// +kubebuilder:validation:Enum=Pending;Building;Built;Failed
type BuildPhase string

const (
	BuildPhasePending  BuildPhase = "Pending"
	BuildPhaseBuilding BuildPhase = "Building"
	BuildPhaseBuilt    BuildPhase = "Built"
	BuildPhaseFailed   BuildPhase = "Failed"
)

// BuildStage is the step an active build is executing.
// +kubebuilder:validation:Enum=Fetching;Building;Pushing
type BuildStage string

const (
	BuildStageFetching BuildStage = "Fetching"
	BuildStageBuilding BuildStage = "Building"
	BuildStagePushing  BuildStage = "Pushing"
)

// DeployPhase is the phase of the deployed workload reported in status.
// +kubebuilder:validation:Enum=NotDeployed;Deploying;Deployed;Failed
type DeployPhase string

const (
	DeployPhaseNotDeployed DeployPhase = "NotDeployed"
	DeployPhaseDeploying   DeployPhase = "Deploying"
	DeployPhaseDeployed    DeployPhase = "Deployed"
	DeployPhaseFailed      DeployPhase = "Failed"
)

// DeletionPolicy controls what happens to deployed workloads when the resource is deleted.
// +kubebuilder:validation:Enum=Retain;Delete
type DeletionPolicy string

const (
	// DeletionPolicyRetain leaves the Deployment and Service running.
	DeletionPolicyRetain DeletionPolicy = "Retain"
	// DeletionPolicyDelete removes the Deployment and Service with the resource.
	DeletionPolicyDelete DeletionPolicy = "Delete"
)

// ParameterSpec is a name/value pair.
type ParameterSpec struct {
	// +kubebuilder:validation:Required
	Name string `json:"name"`
	// +optional
	Value string `json:"value,omitempty"`
}

// BuildSpec describes where the agent source lives and where its image goes.
type BuildSpec struct {
	// RepoURL is the source repository, e.g. github.com/org/repo.git,
	// an archive URL, or s3://bucket/key.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	RepoURL string `json:"repoUrl"`

	// Revision is a branch, tag, or commit.
	// +kubebuilder:default:="main"
	// +optional
	Revision string `json:"revision,omitempty"`

	// SourceSubfolder is the directory inside the repository holding the agent.
	// +optional
	SourceSubfolder string `json:"sourceSubfolder,omitempty"`

	// RepoUser is the user name paired with the token in SourceCredentials.
	// +optional
	RepoUser string `json:"repoUser,omitempty"`

	// SourceCredentials references a Secret holding the repository token.
	// +optional
	SourceCredentials *corev1.LocalObjectReference `json:"sourceCredentials,omitempty"`

	// Image is the image name. Defaults to the resource name.
	// +optional
	Image string `json:"image,omitempty"`

	// +kubebuilder:default:="latest"
	// +optional
	ImageTag string `json:"imageTag,omitempty"`

	// +optional
	ImageRegistry string `json:"imageRegistry,omitempty"`

	// ImageRepoCredentials references a docker config or username/password Secret
	// used to push to ImageRegistry.
	// +optional
	ImageRepoCredentials *corev1.LocalObjectReference `json:"imageRepoCredentials,omitempty"`

	// InsecureRegistry allows plain HTTP to the registry.
	// +optional
	InsecureRegistry bool `json:"insecureRegistry,omitempty"`

	// BaseImage overrides the operator default base image.
	// +optional
	BaseImage string `json:"baseImage,omitempty"`

	// BuildArgs are added to the image environment.
	// +optional
	BuildArgs []ParameterSpec `json:"buildArgs,omitempty"`

	// CleanupAfterBuild releases the build workspace once the image is pushed.
	// +kubebuilder:default:=true
	// +optional
	CleanupAfterBuild *bool `json:"cleanupAfterBuild,omitempty"`
}

// ImageSpec names a prebuilt image.
type ImageSpec struct {
	// +kubebuilder:validation:Required
	Image string `json:"image"`
	// +optional
	ImageTag string `json:"imageTag,omitempty"`
	// +optional
	ImageRegistry string `json:"imageRegistry,omitempty"`
}

// DeploySpec describes the workload started from the image.
type DeploySpec struct {
	// Name overrides the Deployment and Service name. Defaults to the resource name.
	// +optional
	Name string `json:"name,omitempty"`

	// Image is used when the resource has no build section.
	// +optional
	Image *ImageSpec `json:"image,omitempty"`

	// +optional
	ContainerPorts []corev1.ContainerPort `json:"containerPorts,omitempty"`

	// +optional
	ServicePorts []corev1.ServicePort `json:"servicePorts,omitempty"`

	// +optional
	Resources corev1.ResourceRequirements `json:"resources,omitempty"`

	// +optional
	Env []corev1.EnvVar `json:"env,omitempty"`

	// +kubebuilder:default:="ClusterIP"
	// +optional
	ServiceType corev1.ServiceType `json:"serviceType,omitempty"`

	// +optional
	ImagePullPolicy corev1.PullPolicy `json:"imagePullPolicy,omitempty"`

	// +optional
	ImagePullSecrets []corev1.LocalObjectReference `json:"imagePullSecrets,omitempty"`

	// +optional
	Command []string `json:"command,omitempty"`

	// +optional
	Args []string `json:"args,omitempty"`
}

// BuildStatus is the observed state of the build.
type BuildStatus struct {
	// +optional
	Phase BuildPhase `json:"phase,omitempty"`

	// Stage is the step of the active attempt.
	// +optional
	Stage BuildStage `json:"stage,omitempty"`

	// +optional
	Message string `json:"message,omitempty"`

	// ErrorKind classifies the last failure.
	// +optional
	ErrorKind string `json:"errorKind,omitempty"`

	// Retryable reports whether the last failure clears on its own.
	// +optional
	Retryable bool `json:"retryable,omitempty"`

	// BuiltImage is the content-addressable reference of the pushed image.
	// +optional
	BuiltImage string `json:"builtImage,omitempty"`

	// ImageTag is the tag reference the image was pushed under.
	// +optional
	ImageTag string `json:"imageTag,omitempty"`

	// BuildLogRef locates the captured build log.
	// +optional
	BuildLogRef string `json:"buildLogRef,omitempty"`

	// SourceHash is the SHA-256 of the fetched source archive.
	// +optional
	SourceHash string `json:"sourceHash,omitempty"`

	// SpecHash is the hash of the build spec the phase refers to.
	// +optional
	SpecHash string `json:"specHash,omitempty"`

	// +optional
	AttemptID string `json:"attemptID,omitempty"`

	// CredentialsVersion records the resource versions of the credential
	// Secrets the last attempt read.
	// +optional
	CredentialsVersion string `json:"credentialsVersion,omitempty"`

	// Attempts counts consecutive attempts for the current spec.
	// +optional
	Attempts int32 `json:"attempts,omitempty"`

	// +optional
	StartTime *metav1.Time `json:"startTime,omitempty"`

	// +optional
	CompletionTime *metav1.Time `json:"completionTime,omitempty"`

	// +optional
	LastBuildTime *metav1.Time `json:"lastBuildTime,omitempty"`
}

// DeployStatus is the observed state of the deployed workload.
type DeployStatus struct {
	// +optional
	Phase DeployPhase `json:"phase,omitempty"`

	// +optional
	Message string `json:"message,omitempty"`

	// +optional
	ErrorKind string `json:"errorKind,omitempty"`

	// +optional
	DeploymentName string `json:"deploymentName,omitempty"`

	// +optional
	ServiceName string `json:"serviceName,omitempty"`

	// Image is the reference the Deployment runs.
	// +optional
	Image string `json:"image,omitempty"`

	// +optional
	SpecHash string `json:"specHash,omitempty"`

	// +optional
	Ready bool `json:"ready,omitempty"`

	// +optional
	ReadyReplicas int32 `json:"readyReplicas,omitempty"`

	// +optional
	LastTransitionTime *metav1.Time `json:"lastTransitionTime,omitempty"`
}

// AgentStatus is the status shared by AgentBuild and Component.
type AgentStatus struct {
	// +optional
	BuildStatus BuildStatus `json:"buildStatus,omitempty"`

	// +optional
	DeployStatus DeployStatus `json:"deployStatus,omitempty"`

	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// AgentSpec is the canonical intent both kinds reduce to.
type AgentSpec struct {
	// +optional
	Build *BuildSpec `json:"build,omitempty"`

	// +optional
	Deploy *DeploySpec `json:"deploy,omitempty"`

	// DeployAfterBuild deploys the image once it is built.
	// +optional
	DeployAfterBuild bool `json:"deployAfterBuild,omitempty"`

	// DeletionPolicy decides whether deployed workloads outlive the resource.
	// +kubebuilder:default:="Retain"
	// +optional
	DeletionPolicy DeletionPolicy `json:"deletionPolicy,omitempty"`

	// Suspend pauses builds and deployments.
	// +optional
	Suspend bool `json:"suspend,omitempty"`
}

// AgentObject is implemented by every kind the reconciliation core drives.
// +kubebuilder:object:generate=false
type AgentObject interface {
	client.Object
	// Canonical returns the resource intent in the canonical shape.
	Canonical() AgentSpec
	// AgentStatus returns a pointer to the mutable status.
	AgentStatus() *AgentStatus
}

// ShouldCleanup reports whether the workspace is released after a successful build.
func (b *BuildSpec) ShouldCleanup() bool {
	if b == nil || b.CleanupAfterBuild == nil {
		return true
	}
	return *b.CleanupAfterBuild
}

// RevisionOrDefault returns the revision, falling back to DefaultRevision.
func (b *BuildSpec) RevisionOrDefault() string {
	if b.Revision == "" {
		return DefaultRevision
	}
	return b.Revision
}

// TargetImage returns registry/image:tag for the build output. name is used
// when no image is set and registry when no imageRegistry is set.
func (b *BuildSpec) TargetImage(name, registry string) string {
	image := b.Image
	if image == "" {
		image = name
	}
	tag := b.ImageTag
	if tag == "" {
		tag = DefaultImageTag
	}
	return strings.TrimSuffix(b.TargetRegistry(registry), "/") + "/" + image + ":" + tag
}

// TargetRegistry returns the registry host the image is pushed to.
func (b *BuildSpec) TargetRegistry(registry string) string {
	if b.ImageRegistry != "" {
		return b.ImageRegistry
	}
	if registry == "" {
		return DefaultImageRegistry
	}
	return registry
}

// ImageRef joins registry, image and tag.
func (i *ImageSpec) ImageRef() string {
	ref := i.Image
	if i.ImageRegistry != "" {
		ref = i.ImageRegistry + "/" + ref
	}
	if i.ImageTag != "" {
		ref += ":" + i.ImageTag
	}
	return ref
}

// EffectiveDeletionPolicy returns the deletion policy, defaulting to Retain.
func (s *AgentSpec) EffectiveDeletionPolicy() DeletionPolicy {
	if s.DeletionPolicy == "" {
		return DeletionPolicyRetain
	}
	return s.DeletionPolicy
}

// HasPrebuiltImage reports whether the deploy section names an image of its own.
func (s *AgentSpec) HasPrebuiltImage() bool {
	return s.Deploy != nil && s.Deploy.Image != nil && s.Deploy.Image.Image != ""
}
