// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// AssertConditionTrue asserts that a condition with the given type is True.
func AssertConditionTrue(t *testing.T, conditions []metav1.Condition, conditionType string) {
	t.Helper()
	cond := findCondition(conditions, conditionType)
	require.NotNil(t, cond, "Condition %s should exist", conditionType)
	assert.Equal(t, metav1.ConditionTrue, cond.Status, "Condition %s should be True", conditionType)
}

// AssertConditionFalse asserts that a condition with the given type is False.
func AssertConditionFalse(t *testing.T, conditions []metav1.Condition, conditionType string) {
	t.Helper()
	cond := findCondition(conditions, conditionType)
	require.NotNil(t, cond, "Condition %s should exist", conditionType)
	assert.Equal(t, metav1.ConditionFalse, cond.Status, "Condition %s should be False", conditionType)
}

// AssertConditionWithReason asserts that a condition has the expected reason.
func AssertConditionWithReason(t *testing.T, conditions []metav1.Condition, conditionType, expectedReason string) {
	t.Helper()
	cond := findCondition(conditions, conditionType)
	require.NotNil(t, cond, "Condition %s should exist", conditionType)
	assert.Equal(t, expectedReason, cond.Reason, "Condition %s should have reason %s", conditionType, expectedReason)
}

// AssertHasFinalizer asserts that the object has the given finalizer.
func AssertHasFinalizer(t *testing.T, finalizers []string, finalizerName string) {
	t.Helper()
	for _, f := range finalizers {
		if f == finalizerName {
			return
		}
	}
	t.Errorf("Expected finalizer %s not found in %v", finalizerName, finalizers)
}

// findCondition finds a condition by type.
func findCondition(conditions []metav1.Condition, conditionType string) *metav1.Condition {
	for i := range conditions {
		if conditions[i].Type == conditionType {
			return &conditions[i]
		}
	}
	return nil
}
