// Package service provides the cryptographic primitives of the credential-bound
// envelope: AEAD ciphers, DEK generation and wrapping, and fallback KEK derivation.
package service

import (
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// An AEAD value is an opaque key handle: the raw key material it was created
// from is never exposed again.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager generates DEKs and moves them in and out of their wrapped form.
type KeyManager interface {
	// GenerateDek returns KeySize fresh bytes from the secure random source.
	// The caller owns the slice and must zero it when done.
	GenerateDek() ([]byte, error)

	// ImportKek turns raw KEK material into an AES-GCM handle and zeroes raw.
	ImportKek(raw []byte) (AEAD, error)

	// WrapDek encrypts dek under kek with a fresh nonce. The AAD is empty.
	WrapDek(dek []byte, kek AEAD) (cryptoDomain.WrappedDek, error)

	// UnwrapDek authenticates and decrypts a wrapped DEK. Any tampering, a wrong
	// KEK or a malformed blob yields ErrDecryptionFailed.
	UnwrapDek(wrapped cryptoDomain.WrappedDek, kek AEAD) ([]byte, error)
}

// KekDeriver derives the fallback KEK from stored identifiers.
type KekDeriver interface {
	// Derive runs HKDF-SHA256 over credentialID ‖ clientID and returns an
	// AES-GCM handle. The derived bytes are zeroed before returning.
	Derive(credentialID, clientID []byte) (AEAD, error)
}
