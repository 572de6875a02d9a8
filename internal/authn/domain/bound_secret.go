package domain

import (
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// SecretOutcome classifies a bound-secret probe.
type SecretOutcome int

const (
	// SecretPresent means the assertion succeeded and returned the extension secret.
	SecretPresent SecretOutcome = iota + 1
	// SecretUnsupported means the assertion succeeded without the extension secret.
	SecretUnsupported
	// AssertionFailed means the assertion itself failed. For KEK purposes it is
	// treated as SecretUnsupported; the reason is kept for diagnostics.
	AssertionFailed
)

func (o SecretOutcome) String() string {
	switch o {
	case SecretPresent:
		return "secret_present"
	case SecretUnsupported:
		return "secret_unsupported"
	case AssertionFailed:
		return "assertion_failed"
	default:
		return "unknown"
	}
}

// BoundSecret is the result of probing the authenticator for its hmac-secret.
type BoundSecret struct {
	Outcome SecretOutcome
	// Secret is set only for SecretPresent. The receiver owns it and must zero it.
	Secret []byte
	// Reason is set only for AssertionFailed.
	Reason error
}

// HasSecret reports whether the probe produced usable KEK material.
func (b *BoundSecret) HasSecret() bool {
	return b.Outcome == SecretPresent && len(b.Secret) == cryptoDomain.KeySize
}

// Discard zeroes the secret, if any.
func (b *BoundSecret) Discard() {
	cryptoDomain.Zero(b.Secret)
	b.Secret = nil
}
