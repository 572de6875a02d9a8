package domain

import (
	"fmt"

	apperrors "github.com/l2obin/dekbind/internal/errors"
)

// PolicyState is a state of the per-call fallback policy.
type PolicyState int

const (
	PolicyUnknown PolicyState = iota
	PolicyHardwareSecretConfirmed
	PolicyHardwareSecretAbsent
	PolicyAborted
	PolicyFallbackDerived
)

func (s PolicyState) String() string {
	switch s {
	case PolicyUnknown:
		return "UNKNOWN"
	case PolicyHardwareSecretConfirmed:
		return "HARDWARE_SECRET_CONFIRMED"
	case PolicyHardwareSecretAbsent:
		return "HARDWARE_SECRET_ABSENT"
	case PolicyAborted:
		return "ABORTED"
	case PolicyFallbackDerived:
		return "FALLBACK_DERIVED"
	default:
		return fmt.Sprintf("PolicyState(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s PolicyState) Terminal() bool {
	switch s {
	case PolicyHardwareSecretConfirmed, PolicyAborted, PolicyFallbackDerived:
		return true
	default:
		return false
	}
}

// ErrInvalidPolicyTransition indicates a transition the policy does not allow.
var ErrInvalidPolicyTransition = apperrors.New("invalid kek policy transition")

// KekSource names where the KEK of a wrap or unwrap came from.
type KekSource string

const (
	KekSourceHardware KekSource = "hardware"
	KekSourceFallback KekSource = "fallback"
)

// KekPolicy decides, for a single wrap or unwrap call, whether the hardware
// secret is used, the call aborts, or the fallback KEK is derived. A policy is
// never reused across calls.
type KekPolicy struct {
	allowFallback bool
	state         PolicyState
}

// NewKekPolicy starts a policy in PolicyUnknown.
func NewKekPolicy(allowFallback bool) *KekPolicy {
	return &KekPolicy{allowFallback: allowFallback}
}

// State returns the current state.
func (p *KekPolicy) State() PolicyState {
	return p.state
}

// AllowFallback reports the caller's opt-in.
func (p *KekPolicy) AllowFallback() bool {
	return p.allowFallback
}

// Observe records the result of the bound-secret probe.
func (p *KekPolicy) Observe(secretPresent bool) error {
	if p.state != PolicyUnknown {
		return fmt.Errorf("%w: observe from %s", ErrInvalidPolicyTransition, p.state)
	}
	if secretPresent {
		p.state = PolicyHardwareSecretConfirmed
	} else {
		p.state = PolicyHardwareSecretAbsent
	}
	return nil
}

// Resolve leaves PolicyHardwareSecretAbsent for PolicyAborted or
// PolicyFallbackDerived depending on the opt-in.
func (p *KekPolicy) Resolve() (PolicyState, error) {
	if p.state != PolicyHardwareSecretAbsent {
		return p.state, fmt.Errorf("%w: resolve from %s", ErrInvalidPolicyTransition, p.state)
	}
	if p.allowFallback {
		p.state = PolicyFallbackDerived
	} else {
		p.state = PolicyAborted
	}
	return p.state, nil
}
