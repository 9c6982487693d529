package workflow

import (
	"context"
	"fmt"
	"strings"
)

// Policy selects which transition table governs claim status changes
type Policy string

const (
	// PolicyPermissive lets any trigger fire from any state, including re-approving a rejected claim
	PolicyPermissive Policy = "permissive"

	// PolicyStrict allows Pending -> {Approved, Rejected} only; both targets are final
	PolicyStrict Policy = "strict"
)

// ParsePolicy resolves a configured policy name; empty means permissive
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// NewClaimBuilder returns a builder configured with the policy's transition table
func NewClaimBuilder(policy Policy) StateMachineBuilder {
	builder := NewBuilder()

	switch policy {
	case PolicyStrict:
		builder.Configure(StatePending).
			Permit(TriggerApprove, StateApproved).
			Permit(TriggerReject, StateRejected)
	default:
		for _, state := range States() {
			builder.Configure(state).
				Permit(TriggerApprove, StateApproved).
				Permit(TriggerReject, StateRejected)
		}
	}

	return builder
}

// Transitioner computes the next state of a claim without holding a machine per claim
type Transitioner struct {
	builder StateMachineBuilder
	policy  Policy
}

// NewTransitioner creates a Transitioner for policy
func NewTransitioner(policy Policy) *Transitioner {
	return &Transitioner{builder: NewClaimBuilder(policy), policy: policy}
}

// Policy returns the policy the transitioner was built with
func (t *Transitioner) Policy() Policy {
	return t.policy
}

// Next returns the state reached by firing trigger from current
func (t *Transitioner) Next(ctx context.Context, current State, trigger Trigger) (State, error) {
	if !current.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, current)
	}
	machine := t.builder.Build(current)
	if err := machine.Fire(ctx, trigger); err != nil {
		return current, err
	}
	return machine.State(), nil
}
