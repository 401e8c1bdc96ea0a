// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package metrics exposes build and deployment collectors on the
// controller-runtime metrics registry.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/kagenti/agent-operator/internal/build"
	"github.com/kagenti/agent-operator/internal/failure"
)

const namespace = "agent_operator"

// Recorder holds the operator collectors. It implements build.Observer.
type Recorder struct {
	builds      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	deployments *prometheus.CounterVec
	inFlight    prometheus.Gauge
}

var _ build.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Build attempts by resource kind and result.",
		}, []string{"kind", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of finished build attempts.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_phase_transitions_total",
			Help:      "Build state machine transitions by target state.",
		}, []string{"phase"}),
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "Workload applies by result.",
		}, []string{"result"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "builds_in_flight",
			Help:      "Build attempts currently running.",
		}),
	}
	reg.MustRegister(r.builds, r.duration, r.transitions, r.deployments, r.inFlight)
	return r
}

// MustRegisterDefault registers a Recorder on the controller-runtime registry.
func MustRegisterDefault() *Recorder {
	return NewRecorder(metrics.Registry)
}

// Started implements build.Observer.
func (r *Recorder) Started(string) {
	r.inFlight.Inc()
}

// Transition implements build.Observer.
func (r *Recorder) Transition(_ string, _, to build.State) {
	r.transitions.WithLabelValues(string(to)).Inc()
}

// Finished implements build.Observer.
func (r *Recorder) Finished(key string, outcome *build.Outcome) {
	r.inFlight.Dec()
	if outcome == nil {
		return
	}
	result := resultLabel(outcome.Err)
	r.builds.WithLabelValues(kindOfKey(key), result).Inc()
	if !outcome.CompletionTime.IsZero() && !outcome.StartTime.IsZero() {
		r.duration.WithLabelValues(result).Observe(outcome.CompletionTime.Sub(outcome.StartTime).Seconds())
	}
}

// DeploymentApplied counts one apply of a workload.
func (r *Recorder) DeploymentApplied(err error) {
	r.deployments.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return string(failure.KindOf(err))
}

// kindOfKey returns the resource kind of a Kind/namespace/name key.
func kindOfKey(key string) string {
	kind, _, _ := strings.Cut(key, "/")
	return kind
}
