// Package domain defines the persisted layout of the credential-bound envelope:
// the fixed entry names, the schema version marker and the store contract.
package domain

import (
	"context"
)

// Key names an entry in the key store.
type Key string

// Persisted entries. The first three reuse the browser IndexedDB entry names,
// but the credential and client ids are stored as raw bytes rather than the
// browser's base64 strings, so values are not interchangeable.
const (
	// KeyCredentialID holds the raw authenticator credential id.
	KeyCredentialID Key = "webauthn-cred-id"

	// KeyClientID holds the 32 raw bytes of the local client id.
	KeyClientID Key = "webauthn-client-id"

	// KeyWrappedDek holds the base64 text of nonce ‖ ciphertext‖tag.
	KeyWrappedDek Key = "wrapped-dek"

	// KeySchemaVersion holds the decimal layout version.
	KeySchemaVersion Key = "schema-version"
)

// CurrentSchemaVersion is the layout version written by this build.
const CurrentSchemaVersion = "1"

// Store is a durable key-value store. Each call is atomic for a single key;
// no cross-key transactions are offered.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound when absent.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key Key, value []byte) error
}
