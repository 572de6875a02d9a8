// Package usecase binds the envelope to an authenticator credential: it owns
// the credential lifecycle and probes for the hardware-bound secret.
package usecase

import (
	"context"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
)

// ClientIDProvider lazily provisions the local client id.
type ClientIDProvider interface {
	EnsureClientID(ctx context.Context) ([]byte, error)
}

// BindingUseCase manages the credential the DEK is bound to.
type BindingUseCase interface {
	// EnsureCredential returns the persisted credential id, creating and
	// persisting one when absent. The client id is provisioned alongside.
	// Refusal by the authenticator fails with ErrCredentialCreation and is
	// not retried.
	EnsureCredential(ctx context.Context) (authnDomain.CredentialID, error)

	// CredentialID returns the persisted credential id without creating one.
	CredentialID(ctx context.Context) (authnDomain.CredentialID, bool, error)

	// TryGetBoundSecret asserts with credentialID and requests the
	// hmac-secret extension. It never returns an error: failures are
	// reported as AssertionFailed with the reason retained.
	TryGetBoundSecret(ctx context.Context, credentialID authnDomain.CredentialID) *authnDomain.BoundSecret
}
