// Package usecase orchestrates KEK provisioning for the credential-bound
// envelope: the client id lifecycle, hardware secret import and the fallback
// derivation.
package usecase

import (
	"context"

	cryptoService "github.com/l2obin/dekbind/internal/crypto/service"
)

// KekUseCase resolves a KEK for a single wrap or unwrap call.
//
// A KEK is never cached: each call imports or derives a fresh handle and the
// raw bytes are zeroed before the method returns.
type KekUseCase interface {
	// EnsureClientID returns the persisted client id, creating and persisting
	// 32 random bytes first when absent.
	EnsureClientID(ctx context.Context) ([]byte, error)

	// ClientIDPresent reports whether a client id is persisted, without creating one.
	ClientIDPresent(ctx context.Context) (bool, error)

	// ImportHardwareKek imports an authenticator hmac-secret as an AES-GCM
	// handle. The secret is zeroed whatever the outcome.
	ImportHardwareKek(secret []byte) (cryptoService.AEAD, error)

	// DeriveFallbackKek derives the HKDF fallback KEK for credentialID. It has
	// a side effect: the client id is created and persisted when absent.
	DeriveFallbackKek(ctx context.Context, credentialID []byte) (cryptoService.AEAD, error)
}
