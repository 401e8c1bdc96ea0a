// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package build

import (
	"fmt"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
)

// State is a step of the build attempt state machine.
type State string

const (
	StatePending  State = "Pending"
	StateFetching State = "Fetching"
	StateBuilding State = "Building"
	StatePushing  State = "Pushing"
	StateBuilt    State = "Built"
	StateFailed   State = "Failed"
)

// transitions lists the forward edges. Failed is reachable from every
// non-terminal state and is handled separately.
var transitions = map[State]State{
	StatePending:  StateFetching,
	StateFetching: StateBuilding,
	StateBuilding: StatePushing,
	StatePushing:  StateBuilt,
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateBuilt || s == StateFailed
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return transitions[from] == to
}

// Phase maps the state onto the status phase and stage.
func (s State) Phase() (agentv1alpha1.BuildPhase, agentv1alpha1.BuildStage) {
	switch s {
	case StatePending:
		return agentv1alpha1.BuildPhasePending, ""
	case StateFetching:
		return agentv1alpha1.BuildPhaseBuilding, agentv1alpha1.BuildStageFetching
	case StateBuilding:
		return agentv1alpha1.BuildPhaseBuilding, agentv1alpha1.BuildStageBuilding
	case StatePushing:
		return agentv1alpha1.BuildPhaseBuilding, agentv1alpha1.BuildStagePushing
	case StateBuilt:
		return agentv1alpha1.BuildPhaseBuilt, ""
	default:
		return agentv1alpha1.BuildPhaseFailed, ""
	}
}

// machine tracks the current state of one attempt.
type machine struct {
	state   State
	history []State
	notify  func(from, to State)
}

func newMachine(notify func(from, to State)) *machine {
	return &machine{state: StatePending, history: []State{StatePending}, notify: notify}
}

func (m *machine) to(next State) error {
	if !CanTransition(m.state, next) {
		return fmt.Errorf("illegal build transition %s -> %s", m.state, next)
	}
	prev := m.state
	m.state = next
	m.history = append(m.history, next)
	if m.notify != nil {
		m.notify(prev, next)
	}
	return nil
}
