// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package deploy turns a DeploySpec and an image reference into a Deployment
// and a Service and applies them to the cluster.
package deploy

import (
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/controller/common"
	"github.com/kagenti/agent-operator/internal/failure"
)

const (
	// DefaultPortName names the container port used when none are declared.
	DefaultPortName = "http"

	// DefaultComponent is the app.kubernetes.io/component label value.
	DefaultComponent = "agent"
)

// Target identifies the resource the workload belongs to.
type Target struct {
	Name      string
	Namespace string
	OwnerKind string
	// Component is the app.kubernetes.io/component value, agent or tool.
	Component string
}

// Descriptors are the objects synthesized for one resource.
type Descriptors struct {
	Owner      Target
	Deployment *appsv1.Deployment
	Service    *corev1.Service
	SpecHash   string
}

// WorkloadName returns the Deployment and Service name for the target.
func WorkloadName(t Target, spec *agentv1alpha1.DeploySpec) string {
	if spec != nil && spec.Name != "" {
		return spec.Name
	}
	return t.Name
}

// Synthesize validates spec and builds the Deployment and Service running image.
// Equal inputs always produce equal descriptors.
func Synthesize(t Target, spec *agentv1alpha1.DeploySpec, image string) (*Descriptors, error) {
	if spec == nil {
		spec = &agentv1alpha1.DeploySpec{}
	}
	if image == "" {
		return nil, failure.Validation("no image to deploy")
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}

	hash, err := common.ShortConfigHash(struct {
		Target Target                   `json:"target"`
		Spec   agentv1alpha1.DeploySpec `json:"spec"`
		Image  string                   `json:"image"`
	}{t, *spec, image})
	if err != nil {
		return nil, err
	}

	name := WorkloadName(t, spec)
	if msgs := validation.IsDNS1035Label(name); len(msgs) > 0 {
		return nil, failure.Validation("workload name %q: %s", name, strings.Join(msgs, "; "))
	}
	labels := Labels(t, name)
	selector := SelectorLabels(name)
	annotations := map[string]string{
		agentv1alpha1.AnnotationSpecHash:  hash,
		agentv1alpha1.AnnotationOwnerName: t.Name,
	}
	ports := containerPorts(spec)

	container := corev1.Container{
		Name:            name,
		Image:           image,
		ImagePullPolicy: spec.ImagePullPolicy,
		Command:         copyStrings(spec.Command),
		Args:            copyStrings(spec.Args),
		Ports:           ports,
		Env:             copyEnv(spec.Env),
		Resources:       *spec.Resources.DeepCopy(),
	}
	if container.ImagePullPolicy == "" {
		container.ImagePullPolicy = corev1.PullIfNotPresent
	}

	var pullSecrets []corev1.LocalObjectReference
	if len(spec.ImagePullSecrets) > 0 {
		pullSecrets = append(pullSecrets, spec.ImagePullSecrets...)
	}

	deployment := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   t.Namespace,
			Labels:      labels,
			Annotations: annotations,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels:      copyMap(labels),
					Annotations: copyMap(annotations),
				},
				Spec: corev1.PodSpec{
					Containers:       []corev1.Container{container},
					ImagePullSecrets: pullSecrets,
				},
			},
		},
	}

	serviceType := spec.ServiceType
	if serviceType == "" {
		serviceType = corev1.ServiceTypeClusterIP
	}

	service := &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   t.Namespace,
			Labels:      copyMap(labels),
			Annotations: copyMap(annotations),
		},
		Spec: corev1.ServiceSpec{
			Type:     serviceType,
			Selector: copyMap(selector),
			Ports:    servicePorts(spec, ports),
		},
	}

	return &Descriptors{Owner: t, Deployment: deployment, Service: service, SpecHash: hash}, nil
}

// Labels returns the labels written on every object of the workload.
func Labels(t Target, name string) map[string]string {
	component := t.Component
	if component == "" {
		component = DefaultComponent
	}
	return map[string]string{
		agentv1alpha1.LabelName:      name,
		agentv1alpha1.LabelComponent: component,
		agentv1alpha1.LabelManagedBy: agentv1alpha1.ManagedByValue,
		agentv1alpha1.LabelOwnerKind: strings.ToLower(t.OwnerKind),
		agentv1alpha1.LabelOwnerName: agentv1alpha1.OwnerLabelValue(t.Name),
	}
}

// SelectorLabels returns the immutable pod selector.
func SelectorLabels(name string) map[string]string {
	return map[string]string{agentv1alpha1.LabelName: name}
}

// containerPorts returns the declared ports with protocols defaulted, or the
// default http port.
func containerPorts(spec *agentv1alpha1.DeploySpec) []corev1.ContainerPort {
	if len(spec.ContainerPorts) == 0 {
		return []corev1.ContainerPort{{
			Name:          DefaultPortName,
			ContainerPort: agentv1alpha1.DefaultPort,
			Protocol:      corev1.ProtocolTCP,
		}}
	}
	ports := make([]corev1.ContainerPort, 0, len(spec.ContainerPorts))
	for _, p := range spec.ContainerPorts {
		p.Protocol = protocolOrDefault(p.Protocol)
		ports = append(ports, p)
	}
	return ports
}

// servicePorts maps the declared service ports, or mirrors the container ports.
func servicePorts(spec *agentv1alpha1.DeploySpec, ports []corev1.ContainerPort) []corev1.ServicePort {
	if len(spec.ServicePorts) == 0 {
		out := make([]corev1.ServicePort, 0, len(ports))
		for _, cp := range ports {
			name := cp.Name
			if name == "" && len(ports) > 1 {
				name = fmt.Sprintf("port-%d", cp.ContainerPort)
			}
			out = append(out, corev1.ServicePort{
				Name:       name,
				Port:       cp.ContainerPort,
				TargetPort: intstr.FromInt32(cp.ContainerPort),
				Protocol:   cp.Protocol,
			})
		}
		return out
	}

	out := make([]corev1.ServicePort, 0, len(spec.ServicePorts))
	for _, sp := range spec.ServicePorts {
		sp.TargetPort = targetPort(sp)
		sp.Protocol = protocolOrDefault(sp.Protocol)
		out = append(out, sp)
	}
	return out
}

func copyEnv(env []corev1.EnvVar) []corev1.EnvVar {
	if len(env) == 0 {
		return nil
	}
	out := make([]corev1.EnvVar, len(env))
	for i := range env {
		env[i].DeepCopyInto(&out[i])
	}
	return out
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
