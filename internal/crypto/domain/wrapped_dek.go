// Package domain defines the key material types of the credential-bound
// envelope: the AEAD algorithms, the wrapped DEK blob and zeroization helpers.
package domain

import (
	"encoding/base64"
	"fmt"

	"github.com/l2obin/dekbind/internal/errors"
)

// WrappedDek is a DEK encrypted under a KEK, laid out as nonce ‖ ciphertext‖tag.
// Its persisted and displayed form is standard base64.
type WrappedDek []byte

// NewWrappedDek joins a nonce and an AEAD ciphertext into a wrapped blob.
func NewWrappedDek(nonce, ciphertext []byte) WrappedDek {
	w := make(WrappedDek, 0, len(nonce)+len(ciphertext))
	w = append(w, nonce...)
	return append(w, ciphertext...)
}

// ParseWrappedDek decodes the base64 form of a wrapped DEK and validates its length.
func ParseWrappedDek(s string) (WrappedDek, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedWrappedDek, "invalid base64")
	}
	w := WrappedDek(raw)
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks that the blob can hold a nonce and an authentication tag.
func (w WrappedDek) Validate() error {
	if len(w) < NonceSize+TagSize {
		return fmt.Errorf("%w: %d bytes", ErrMalformedWrappedDek, len(w))
	}
	return nil
}

// Nonce returns the leading IV. The blob must be valid.
func (w WrappedDek) Nonce() []byte {
	return w[:NonceSize]
}

// Ciphertext returns the ciphertext and tag following the IV. The blob must be valid.
func (w WrappedDek) Ciphertext() []byte {
	return w[NonceSize:]
}

// String returns the standard base64 encoding used for persistence and display.
func (w WrappedDek) String() string {
	return base64.StdEncoding.EncodeToString(w)
}
