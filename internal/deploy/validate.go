// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package deploy

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/failure"
)

var supportedServiceTypes = map[corev1.ServiceType]bool{
	"":                            true,
	corev1.ServiceTypeClusterIP:    true,
	corev1.ServiceTypeNodePort:     true,
	corev1.ServiceTypeLoadBalancer: true,
}

// Validate checks spec and returns a ValidationError listing every problem.
// A nil spec is valid and synthesizes the defaults.
func Validate(spec *agentv1alpha1.DeploySpec) error {
	errs := ValidateSpec(spec, field.NewPath("spec", "deploy"))
	if len(errs) == 0 {
		return nil
	}
	return failure.Validation("%s", errs.ToAggregate().Error())
}

// ValidateSpec returns the field errors of spec rooted at fldPath.
func ValidateSpec(spec *agentv1alpha1.DeploySpec, fldPath *field.Path) field.ErrorList {
	if spec == nil {
		return nil
	}

	var errs field.ErrorList

	if spec.Image != nil && spec.Image.Image == "" {
		errs = append(errs, field.Required(fldPath.Child("image", "image"), "image name is required"))
	}

	if !supportedServiceTypes[spec.ServiceType] {
		errs = append(errs, field.NotSupported(fldPath.Child("serviceType"), spec.ServiceType,
			[]corev1.ServiceType{corev1.ServiceTypeClusterIP, corev1.ServiceTypeNodePort, corev1.ServiceTypeLoadBalancer}))
	}

	errs = append(errs, validateContainerPorts(spec.ContainerPorts, fldPath.Child("containerPorts"))...)
	errs = append(errs, validateServicePorts(spec.ServicePorts, containerPorts(spec), fldPath.Child("servicePorts"))...)
	errs = append(errs, validateResources(spec.Resources, fldPath.Child("resources"))...)
	errs = append(errs, validateEnv(spec.Env, fldPath.Child("env"))...)

	return errs
}

func validateContainerPorts(ports []corev1.ContainerPort, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList
	names := map[string]bool{}
	numbers := map[string]bool{}

	for i, p := range ports {
		idx := fldPath.Index(i)
		for _, msg := range validation.IsValidPortNum(int(p.ContainerPort)) {
			errs = append(errs, field.Invalid(idx.Child("containerPort"), p.ContainerPort, msg))
		}
		if p.Name != "" {
			for _, msg := range validation.IsValidPortName(p.Name) {
				errs = append(errs, field.Invalid(idx.Child("name"), p.Name, msg))
			}
			if names[p.Name] {
				errs = append(errs, field.Duplicate(idx.Child("name"), p.Name))
			}
			names[p.Name] = true
		}
		key := fmt.Sprintf("%d/%s", p.ContainerPort, protocolOrDefault(p.Protocol))
		if numbers[key] {
			errs = append(errs, field.Duplicate(idx.Child("containerPort"), p.ContainerPort))
		}
		numbers[key] = true
	}
	return errs
}

func validateServicePorts(ports []corev1.ServicePort, declared []corev1.ContainerPort, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList
	names := map[string]bool{}
	numbers := map[string]bool{}

	for i, p := range ports {
		idx := fldPath.Index(i)
		for _, msg := range validation.IsValidPortNum(int(p.Port)) {
			errs = append(errs, field.Invalid(idx.Child("port"), p.Port, msg))
		}
		if len(ports) > 1 && p.Name == "" {
			errs = append(errs, field.Required(idx.Child("name"), "required when more than one service port is declared"))
		}
		if p.Name != "" {
			if names[p.Name] {
				errs = append(errs, field.Duplicate(idx.Child("name"), p.Name))
			}
			names[p.Name] = true
		}
		key := fmt.Sprintf("%d/%s", p.Port, protocolOrDefault(p.Protocol))
		if numbers[key] {
			errs = append(errs, field.Duplicate(idx.Child("port"), p.Port))
		}
		numbers[key] = true

		target := targetPort(p)
		if !matchesContainerPort(target, declared) {
			errs = append(errs, field.Invalid(idx.Child("targetPort"), target.String(),
				"does not match any container port"))
		}
	}
	return errs
}

func validateResources(res corev1.ResourceRequirements, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList
	for name, request := range res.Requests {
		limit, ok := res.Limits[name]
		if !ok {
			continue
		}
		if request.Cmp(limit) > 0 {
			errs = append(errs, field.Invalid(fldPath.Child("requests").Key(string(name)), request.String(),
				fmt.Sprintf("must be less than or equal to %s limit of %s", name, limit.String())))
		}
	}
	return errs
}

func validateEnv(env []corev1.EnvVar, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList
	for i, e := range env {
		idx := fldPath.Index(i)
		if e.Name == "" {
			errs = append(errs, field.Required(idx.Child("name"), ""))
		}
		if e.Value != "" && e.ValueFrom != nil {
			errs = append(errs, field.Invalid(idx.Child("valueFrom"), "",
				"may not be specified when `value` is not empty"))
			continue
		}
		if e.ValueFrom != nil && countSources(e.ValueFrom) != 1 {
			errs = append(errs, field.Invalid(idx.Child("valueFrom"), "",
				"must specify exactly one of secretKeyRef, configMapKeyRef, fieldRef or resourceFieldRef"))
		}
	}
	return errs
}

func countSources(src *corev1.EnvVarSource) int {
	n := 0
	if src.SecretKeyRef != nil {
		n++
	}
	if src.ConfigMapKeyRef != nil {
		n++
	}
	if src.FieldRef != nil {
		n++
	}
	if src.ResourceFieldRef != nil {
		n++
	}
	return n
}

// targetPort returns the container port a service port forwards to.
func targetPort(p corev1.ServicePort) intstr.IntOrString {
	if p.TargetPort.Type == intstr.String && p.TargetPort.StrVal != "" {
		return p.TargetPort
	}
	if p.TargetPort.Type == intstr.Int && p.TargetPort.IntVal != 0 {
		return p.TargetPort
	}
	return intstr.FromInt32(p.Port)
}

func matchesContainerPort(target intstr.IntOrString, ports []corev1.ContainerPort) bool {
	for _, cp := range ports {
		switch target.Type {
		case intstr.String:
			if cp.Name == target.StrVal {
				return true
			}
		default:
			if cp.ContainerPort == target.IntVal {
				return true
			}
		}
	}
	return false
}

func protocolOrDefault(p corev1.Protocol) corev1.Protocol {
	if p == "" {
		return corev1.ProtocolTCP
	}
	return p
}
