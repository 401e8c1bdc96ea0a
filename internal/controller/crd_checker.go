// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package controller

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/rest"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

// CRDChecker provides methods to check if CRDs exist in the cluster
type CRDChecker struct {
	discoveryClient discovery.DiscoveryInterface
}

// NewCRDChecker creates a new CRDChecker using the provided REST config
func NewCRDChecker(config *rest.Config) (*CRDChecker, error) {
	dc, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, err
	}
	return &CRDChecker{discoveryClient: dc}, nil
}

// NewCRDCheckerFromDiscovery wraps an existing discovery client.
func NewCRDCheckerFromDiscovery(dc discovery.DiscoveryInterface) *CRDChecker {
	return &CRDChecker{discoveryClient: dc}
}

// HasGVK checks if a specific GroupVersionKind is available in the cluster
func (c *CRDChecker) HasGVK(gvk schema.GroupVersionKind) bool {
	resourceList, err := c.discoveryClient.ServerResourcesForGroupVersion(gvk.GroupVersion().String())
	if err != nil {
		return false
	}

	for _, resource := range resourceList.APIResources {
		if resource.Kind == gvk.Kind {
			return true
		}
	}
	return false
}

// HasAgentBuild checks if the AgentBuild CRD is installed
func (c *CRDChecker) HasAgentBuild() bool {
	return c.HasGVK(agentv1alpha1.GroupVersion.WithKind("AgentBuild"))
}

// HasComponent checks if the Component CRD is installed. Clusters that only
// run AgentBuild may omit it.
func (c *CRDChecker) HasComponent() bool {
	return c.HasGVK(agentv1alpha1.GroupVersion.WithKind("Component"))
}
