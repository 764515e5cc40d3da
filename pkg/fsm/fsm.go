// Package fsm implements the finite state machine that sequences chart
// monitors between their armed and alarmed conditions.
package fsm

import "fmt"

// State represents a named machine state
type State string

// Transition represents an allowable transition from one state to another
type Transition struct {
	From State
	To   State
}

// T is a shorthand for declaring the allowable transitions out of a single
// state during machine creation
func T(from State, tos ...State) []Transition {
	transitions := make([]Transition, 0, len(tos))
	for _, to := range tos {
		transitions = append(transitions, Transition{From: from, To: to})
	}
	return transitions
}

// Machine is a basic finite state machine with a fixed transition graph
type Machine struct {
	current   State
	initial   State
	allowable map[State][]State
}

// NewMachine returns a machine in the initial state.  Edges are declared
// with T, e.g. NewMachine(armed, T(armed, alarmed), T(alarmed, armed)).
func NewMachine(initial State, transitions ...[]Transition) *Machine {
	m := &Machine{
		current:   initial,
		initial:   initial,
		allowable: map[State][]State{},
	}
	for _, group := range transitions {
		for _, t := range group {
			m.allowable[t.From] = append(m.allowable[t.From], t.To)
		}
	}
	return m
}

// State returns the current state of the machine
func (m *Machine) State() State {
	return m.current
}

// Allowable checks whether a transition between two states is allowable
func (m *Machine) Allowable(from, to State) bool {
	for _, a := range m.allowable[from] {
		if a == to {
			return true
		}
	}
	return false
}

// Transition will change the current state of the machine if it is allowable
func (m *Machine) Transition(to State) error {
	if !m.Allowable(m.current, to) {
		return TransitionNotAllowed{Msg: fmt.Sprintf("cannot transition from state %s to %s", m.current, to)}
	}
	m.current = to
	return nil
}

// Reset returns the machine to its initial state
func (m *Machine) Reset() {
	m.current = m.initial
}
