// Package usecase implements the DEK lifecycle: generate, wrap under a
// credential-bound KEK, unwrap, and the timed exposure of plaintext.
package usecase

import (
	"context"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
)

// DekManager is the operation surface of the envelope.
//
// Generate, Wrap, Unwrap and EnsureCredential are serialized: a call waits
// for the previous one (including any authenticator prompt) or for ctx.
// Every returned error is a *dekDomain.Error.
type DekManager interface {
	// Generate creates a fresh DEK and exposes it for the configured window.
	// Any previously exposed plaintext is zeroed first.
	Generate(ctx context.Context) (*dekDomain.Exposure, error)

	// Wrap encrypts the exposed DEK under the hardware KEK, or under the
	// fallback KEK when allowFallback is set and no hardware secret is
	// available, persists the blob and zeroes the plaintext.
	Wrap(ctx context.Context, allowFallback bool) (*dekDomain.WrapResult, error)

	// Unwrap decrypts wrapped, or the persisted blob when wrapped is nil, and
	// exposes the plaintext for the configured window.
	Unwrap(ctx context.Context, allowFallback bool, wrapped cryptoDomain.WrappedDek) (*dekDomain.UnwrapResult, error)

	// EnsureCredential returns the bound credential, creating it when absent.
	EnsureCredential(ctx context.Context) (authnDomain.CredentialID, error)

	// Status reports what is persisted and exposed. It does not wait for
	// in-flight operations.
	Status(ctx context.Context) (*dekDomain.Status, error)

	// Exposed returns the base64 display value of the DEK while the window is open.
	Exposed() (*dekDomain.ExposedDek, bool)

	// Encrypt seals plaintext under the exposed DEK with a fresh nonce. Like
	// Decrypt it never prompts and does not queue behind other operations.
	Encrypt(ctx context.Context, plaintext []byte) (dekDomain.Sealed, error)

	// Decrypt opens a payload sealed under the currently exposed DEK.
	Decrypt(ctx context.Context, sealed dekDomain.Sealed) ([]byte, error)

	// Close zeroes any exposed plaintext and stops the zeroization timer.
	Close()
}
