// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package controller

// FinalizerAgent guards release of build-only children on deletion.
const FinalizerAgent = "agent.kagenti.dev/finalizer"

// Condition types written on AgentBuild and Component status.
const (
	ConditionReady    = "Ready"
	ConditionBuilt    = "Built"
	ConditionDeployed = "Deployed"
)

// Controller names for logging and events
const (
	ControllerNameAgentBuild = "agentbuild"
	ControllerNameComponent  = "component"
)

// Event reasons
const (
	// Success events
	EventReasonBuildStarted     = "BuildStarted"
	EventReasonBuildSucceeded   = "BuildSucceeded"
	EventReasonDeployed         = "Deployed"
	EventReasonReady            = "Ready"
	EventReasonWorkloadDeleted  = "WorkloadDeleted"
	EventReasonWorkloadRetained = "WorkloadRetained"
	EventReasonFinalizerRemoved = "FinalizerRemoved"
	EventReasonSuspended        = "Suspended"

	// Failure events
	EventReasonBuildFailed       = "BuildFailed"
	EventReasonBuildInterrupted  = "BuildInterrupted"
	EventReasonCleanupFailed     = "CleanupFailed"
	EventReasonDeployFailed      = "DeployFailed"
	EventReasonDeleteFailed      = "DeleteFailed"
	EventReasonValidationFailed  = "ValidationFailed"
	EventReasonRolloutFailed     = "RolloutFailed"
	EventReasonStatusWriteFailed = "StatusWriteFailed"
)

// Condition reasons that are not event reasons.
const (
	ReasonBuilding    = "Building"
	ReasonNotBuilt    = "NotBuilt"
	ReasonNotDeployed = "NotDeployed"
	ReasonProgressing = "Progressing"
)
