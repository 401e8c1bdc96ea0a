// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

func resourceQuantity(s string) resource.Quantity {
	return resource.MustParse(s)
}

var _ = Describe("Component Webhook", func() {
	var (
		ctx       context.Context
		obj       *agentv1alpha1.Component
		validator ComponentCustomValidator
	)

	BeforeEach(func() {
		ctx = context.Background()
		validator = ComponentCustomValidator{}
		obj = &agentv1alpha1.Component{
			ObjectMeta: metav1.ObjectMeta{Name: "weather", Namespace: "team1"},
			Spec: agentv1alpha1.ComponentSpec{
				Agent: &agentv1alpha1.AgentComponent{Build: &agentv1alpha1.ComponentBuildSpec{
					SourceRepository: "github.com/acme/agents.git",
				}},
				Deployer: agentv1alpha1.DeployerSpec{
					DeployAfterBuild: true,
					Kubernetes:       &agentv1alpha1.KubernetesSpec{},
				},
			},
		}
	})

	It("Should admit a valid agent component", func() {
		_, err := validator.ValidateCreate(ctx, obj)
		Expect(err).NotTo(HaveOccurred())
	})

	It("Should reject agent and tool together", func() {
		obj.Spec.Tool = &agentv1alpha1.ToolComponent{ToolType: "MCP"}
		_, err := validator.ValidateCreate(ctx, obj)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("spec.tool"))
	})

	It("Should reject env entries with both a value and a reference", func() {
		obj.Spec.Deployer.Env = []corev1.EnvVar{{
			Name:  "API_KEY",
			Value: "literal",
			ValueFrom: &corev1.EnvVarSource{ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: "cfg"},
				Key:                  "key",
			}},
		}}
		_, err := validator.ValidateUpdate(ctx, obj, obj)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("spec.deploy.env[0].valueFrom"))
	})

	It("Should reject deploying a tool without a build or an image", func() {
		obj.Spec.Agent = nil
		obj.Spec.Tool = &agentv1alpha1.ToolComponent{}
		_, err := validator.ValidateCreate(ctx, obj)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("deployAfterBuild requires"))
	})

	It("Should admit a tool with a prebuilt image", func() {
		obj.Spec.Agent = nil
		obj.Spec.Tool = &agentv1alpha1.ToolComponent{}
		obj.Spec.Deployer.Kubernetes.ImageSpec.Image = "acme/weather-tool"
		_, err := validator.ValidateCreate(ctx, obj)
		Expect(err).NotTo(HaveOccurred())
	})
})
