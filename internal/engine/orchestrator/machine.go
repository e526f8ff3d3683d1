package orchestrator

import (
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Machine tracks the provisioning state and refuses transitions the state graph forbids.
type Machine struct {
	state   domain.State
	history []domain.State
}

// NewMachine returns a machine in the Init state.
func NewMachine() *Machine {
	return &Machine{state: domain.StateInit, history: []domain.State{domain.StateInit}}
}

// State returns the current state.
func (m *Machine) State() domain.State {
	return m.state
}

// History returns every state entered, in order, starting with Init.
func (m *Machine) History() []domain.State {
	return slices.Clone(m.history)
}

// Transition moves to next. An illegal move leaves the machine unchanged.
func (m *Machine) Transition(next domain.State) error {
	if !m.state.CanTransition(next) {
		return zerr.With(
			zerr.With(zerr.Wrap(domain.ErrIllegalTransition, "transition refused"), "from", m.state.String()),
			"to", next.String())
	}
	m.state = next
	m.history = append(m.history, next)
	return nil
}
