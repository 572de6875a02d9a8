package domain

import (
	"github.com/l2obin/dekbind/internal/errors"
)

// Cryptographic operation error definitions.
//
// These wrap the categories from internal/errors so handlers can map them to
// status codes without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates AEAD authentication failed.
	//
	// A wrong KEK, a corrupted blob and deliberate tampering are deliberately
	// indistinguishable. This is the only tamper signal the system has, so it
	// must always reach the caller.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrMalformedWrappedDek indicates a wrapped DEK that cannot even be split
	// into nonce and ciphertext. It is a decryption failure for classification.
	ErrMalformedWrappedDek = errors.Wrap(ErrDecryptionFailed, "malformed wrapped dek")

	// ErrRandomSourceUnavailable indicates the secure random source failed.
	// There is no recovery from this error.
	ErrRandomSourceUnavailable = errors.New("secure random source unavailable")
)
