package domain

import (
	"time"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// Status is the read-only view of the envelope for display.
type Status struct {
	CredentialPresent bool
	ClientIDPresent   bool
	// HardwareSecretSupported is the last observed probe result; nil until a
	// wrap or unwrap has asked the authenticator in this process.
	HardwareSecretSupported *bool
	WrappedDekPresent       bool
	DekExposed              bool
	ExposedUntil            *time.Time
}

// WrapResult is returned by a successful wrap.
type WrapResult struct {
	Wrapped   cryptoDomain.WrappedDek
	KekSource KekSource
}

// UnwrapResult is returned by a successful unwrap. The plaintext itself stays
// in the exposure slot.
type UnwrapResult struct {
	ExpiresAt time.Time
	KekSource KekSource
}
