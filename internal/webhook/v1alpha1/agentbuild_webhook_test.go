// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

var _ = Describe("AgentBuild Webhook", func() {
	var (
		ctx       context.Context
		obj       *agentv1alpha1.AgentBuild
		validator AgentBuildCustomValidator
	)

	BeforeEach(func() {
		ctx = context.Background()
		validator = AgentBuildCustomValidator{}
		obj = &agentv1alpha1.AgentBuild{
			ObjectMeta: metav1.ObjectMeta{Name: "weather", Namespace: "team1"},
			Spec: agentv1alpha1.AgentBuildSpec{AgentSpec: agentv1alpha1.AgentSpec{
				Build: &agentv1alpha1.BuildSpec{
					RepoURL:         "github.com/acme/agents.git",
					SourceSubfolder: "weather",
				},
				DeployAfterBuild: true,
			}},
		}
	})

	Context("When creating an AgentBuild", func() {
		It("Should admit a valid spec", func() {
			warnings, err := validator.ValidateCreate(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(BeEmpty())
		})

		It("Should reject a service port without a matching container port", func() {
			obj.Spec.Deploy = &agentv1alpha1.DeploySpec{
				ContainerPorts: []corev1.ContainerPort{{Name: "http", ContainerPort: 8000}},
				ServicePorts:   []corev1.ServicePort{{Port: 80, TargetPort: intstr.FromInt32(9090)}},
			}
			_, err := validator.ValidateCreate(ctx, obj)
			Expect(err).To(HaveOccurred())
			Expect(apierrors.IsInvalid(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("spec.deploy.servicePorts[0].targetPort"))
		})

		It("Should reject requests above limits", func() {
			obj.Spec.Deploy = &agentv1alpha1.DeploySpec{
				Resources: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceMemory: resourceQuantity("2Gi")},
					Limits:   corev1.ResourceList{corev1.ResourceMemory: resourceQuantity("1Gi")},
				},
			}
			_, err := validator.ValidateCreate(ctx, obj)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("spec.deploy.resources.requests[memory]"))
		})

		It("Should warn when a prebuilt image is shadowed by the build", func() {
			obj.Spec.Deploy = &agentv1alpha1.DeploySpec{Image: &agentv1alpha1.ImageSpec{Image: "acme/weather"}}
			warnings, err := validator.ValidateCreate(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(ContainElement(ContainSubstring("spec.deploy.image is ignored")))
		})

		It("Should reject an object of another type", func() {
			_, err := validator.ValidateCreate(ctx, &agentv1alpha1.Component{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("When updating an AgentBuild", func() {
		It("Should reject an invalid deletion policy", func() {
			updated := obj.DeepCopy()
			updated.Spec.DeletionPolicy = "Orphan"
			_, err := validator.ValidateUpdate(ctx, obj, updated)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("spec.deletionPolicy"))
		})

		It("Should admit updates to objects being deleted", func() {
			updated := obj.DeepCopy()
			updated.Spec.Build.RepoURL = ""
			now := metav1.Now()
			updated.DeletionTimestamp = &now
			_, err := validator.ValidateUpdate(ctx, obj, updated)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("When deleting an AgentBuild", func() {
		It("Should always admit", func() {
			_, err := validator.ValidateDelete(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
