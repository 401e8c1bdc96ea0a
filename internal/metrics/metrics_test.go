// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kagenti/agent-operator/internal/build"
	"github.com/kagenti/agent-operator/internal/failure"
)

func TestRecorder_BuildLifecycle(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	key := "AgentBuild/team1/weather"

	r.Started(key)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.inFlight))

	r.Transition(key, build.StatePending, build.StateFetching)
	r.Transition(key, build.StateFetching, build.StateFailed)

	start := time.Unix(1000, 0)
	r.Finished(key, &build.Outcome{
		State:          build.StateFailed,
		Err:            failure.Auth("load credentials", errors.New("denied")),
		StartTime:      start,
		CompletionTime: start.Add(3 * time.Second),
	})

	assert.Equal(t, 0.0, testutil.ToFloat64(r.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.builds.WithLabelValues("AgentBuild", "AuthError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("Fetching")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_DeploymentApplied(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.DeploymentApplied(nil)
	r.DeploymentApplied(nil)
	r.DeploymentApplied(failure.Validation("bad port"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.deployments.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deployments.WithLabelValues("ValidationError")))
}

func TestKindOfKey(t *testing.T) {
	assert.Equal(t, "Component", kindOfKey("Component/ns/name"))
	assert.Equal(t, "plain", kindOfKey("plain"))
}
