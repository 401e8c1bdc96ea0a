// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package common

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ShortHashLength is the number of hex characters kept in annotations and status.
const ShortHashLength = 16

// ComputeConfigHash computes a SHA256 hash of the given configuration.
// Map keys are sorted by encoding/json, so equal values hash equally.
// Returns a hex-encoded string of the hash.
func ComputeConfigHash(config any) (string, error) {
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("marshal config for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// ShortConfigHash is ComputeConfigHash truncated to ShortHashLength.
func ShortConfigHash(config any) (string, error) {
	hash, err := ComputeConfigHash(config)
	if err != nil {
		return "", err
	}
	return hash[:ShortHashLength], nil
}

// HashChanged compares two hashes and returns true if they differ.
// An empty previous hash always indicates a change.
func HashChanged(previous, current string) bool {
	if previous == "" {
		return true
	}
	return previous != current
}
