package workflow

import (
	"fmt"
	"strings"
)

// State is the approval status of a claim
type State string

const (
	StatePending  State = "PENDING"
	StateApproved State = "APPROVED"
	StateRejected State = "REJECTED"
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
}

// terminalStates are final under the strict policy only
var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

var stateLabels = map[State]string{
	StatePending:  "Pending",
	StateApproved: "Approved",
	StateRejected: "Rejected",
}

// IsTerminal returns true if the state accepts no further triggers under the strict policy
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is one of the three claim states
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the wire representation of the state
func (s State) String() string {
	return string(s)
}

// Label returns the display form shown in the status field ("Pending", "Approved", "Rejected")
func (s State) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseState accepts either the wire form ("APPROVED") or the display form ("Approved")
func ParseState(s string) (State, error) {
	state := State(strings.ToUpper(strings.TrimSpace(s)))
	if !state.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
	return state, nil
}

// States returns all claim states in display order
func States() []State {
	return []State{StatePending, StateApproved, StateRejected}
}
