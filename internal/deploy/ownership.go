// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package deploy

import (
	"errors"
	"fmt"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/client"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/failure"
)

// ErrOwnershipConflict is returned when a Deployment or Service of the wanted
// name exists but was not written for the same resource.
var ErrOwnershipConflict = errors.New("workload ownership conflict")

// OwnershipChecker decides whether an existing object may be updated or
// deleted on behalf of one resource.
type OwnershipChecker struct {
	// OwnerKind is the lowercase kind written to LabelOwnerKind.
	OwnerKind string
	// OwnerName is the value written to LabelOwnerName.
	OwnerName string
}

// NewOwnershipChecker creates a checker for the resource behind t.
func NewOwnershipChecker(t Target) *OwnershipChecker {
	return &OwnershipChecker{
		OwnerKind: strings.ToLower(t.OwnerKind),
		OwnerName: agentv1alpha1.OwnerLabelValue(t.Name),
	}
}

// OwnershipResult is the outcome of an ownership check.
type OwnershipResult struct {
	// Found is false when the object does not exist yet.
	Found bool
	// Owned is set when the object carries this resource's owner labels.
	Owned bool
	// ManagedBy describes the current owner, empty for unmanaged objects.
	ManagedBy string
}

// IsAvailable reports whether the object may be written.
func (r OwnershipResult) IsAvailable() bool {
	return !r.Found || r.Owned
}

// Check inspects obj. An object without a resource version has not been read
// from the cluster and counts as not found.
func (c *OwnershipChecker) Check(obj client.Object) OwnershipResult {
	if obj.GetResourceVersion() == "" {
		return OwnershipResult{}
	}

	labels := obj.GetLabels()
	res := OwnershipResult{Found: true}
	if labels[agentv1alpha1.LabelManagedBy] != agentv1alpha1.ManagedByValue {
		return res
	}
	res.ManagedBy = labels[agentv1alpha1.LabelOwnerKind] + "/" + labels[agentv1alpha1.LabelOwnerName]
	res.Owned = labels[agentv1alpha1.LabelOwnerKind] == c.OwnerKind &&
		labels[agentv1alpha1.LabelOwnerName] == c.OwnerName
	return res
}

// ConflictError returns the ValidationError reported for an object that
// belongs to someone else. Renaming the workload resolves it.
func (c *OwnershipChecker) ConflictError(resourceType, name string, r OwnershipResult) error {
	manager := r.ManagedBy
	if manager == "" {
		manager = "no agent resource"
	}
	return failure.New(failure.KindValidation, "apply workload",
		fmt.Errorf("%w: %s %q already exists and is managed by %s", ErrOwnershipConflict, resourceType, name, manager))
}
