// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package common provides shared utilities for the agent controllers.
//
// # Key Components
//
//   - Requeue utilities: Standard intervals and error-driven backoff
//   - Hash utilities: Spec hashes recorded in status to detect changes
//
// # Usage Pattern
//
// Controllers compare the hash of the current spec with the one recorded in
// status and only start new work when it changed:
//
//	hash, err := common.ShortConfigHash(spec.Build)
//	if err != nil {
//	    return ctrl.Result{}, err
//	}
//	if common.HashChanged(obj.Status.BuildStatus.SpecHash, hash) {
//	    // start a new build attempt
//	}
//
//	return common.RequeueForError(buildErr, int(obj.Status.BuildStatus.Attempts)), nil
package common
