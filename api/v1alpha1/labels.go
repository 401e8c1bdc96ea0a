// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Labels and annotations written on objects the operator creates.
const (
	LabelName      = "app.kubernetes.io/name"
	LabelComponent = "app.kubernetes.io/component"
	LabelManagedBy = "app.kubernetes.io/managed-by"

	// ManagedByValue is written to LabelManagedBy.
	ManagedByValue = "agent-operator"

	// LabelOwnerKind and LabelOwnerName identify the resource a child belongs to.
	// Children carry no owner references so that retained workloads survive
	// deletion of the resource.
	LabelOwnerKind = "agent.kagenti.dev/owner-kind"
	LabelOwnerName = "agent.kagenti.dev/owner-name"

	// LabelBuildLog marks build log objects as build-only children.
	LabelBuildLog = "agent.kagenti.dev/build-log"

	// AnnotationSpecHash records the hash of the inputs an object was synthesized from.
	AnnotationSpecHash = "agent.kagenti.dev/spec-hash"

	// AnnotationAttemptID records the build attempt that wrote an object.
	AnnotationAttemptID = "agent.kagenti.dev/attempt-id"

	// AnnotationOwnerName holds the full owner name when LabelOwnerName is shortened.
	AnnotationOwnerName = "agent.kagenti.dev/owner-name"
)

// maxLabelValueLength is the Kubernetes limit on label values.
const maxLabelValueLength = 63

// OwnerLabelValue returns name as a valid label value. Names longer than the
// label limit are cut and suffixed with a hash of the full name.
func OwnerLabelValue(name string) string {
	if len(name) <= maxLabelValueLength {
		return name
	}
	sum := sha256.Sum256([]byte(name))
	suffix := hex.EncodeToString(sum[:])[:8]
	prefix := strings.TrimRight(name[:maxLabelValueLength-len(suffix)-1], "-.")
	return prefix + "-" + suffix
}
