package domain

import (
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	apperrors "github.com/l2obin/dekbind/internal/errors"
)

// ErrMalformedSealed indicates a sealed payload too short to hold a nonce and a tag.
var ErrMalformedSealed = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed sealed payload")

// Sealed is a payload encrypted under the exposed DEK, laid out as
// nonce ‖ ciphertext‖tag like a wrapped DEK.
type Sealed []byte

// NewSealed joins a nonce and an AEAD ciphertext.
func NewSealed(nonce, ciphertext []byte) Sealed {
	s := make(Sealed, 0, len(nonce)+len(ciphertext))
	s = append(s, nonce...)
	return append(s, ciphertext...)
}

// ParseSealed decodes the base64 form of a sealed payload and validates its length.
func ParseSealed(encoded string) (Sealed, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.Wrap(ErrMalformedSealed, "invalid base64")
	}
	s := Sealed(raw)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s Sealed) Validate() error {
	if len(s) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return fmt.Errorf("%w: %d bytes", ErrMalformedSealed, len(s))
	}
	return nil
}

// Nonce returns the leading nonce. The payload must be valid.
func (s Sealed) Nonce() []byte {
	return s[:cryptoDomain.NonceSize]
}

// Ciphertext returns the ciphertext and tag. The payload must be valid.
func (s Sealed) Ciphertext() []byte {
	return s[cryptoDomain.NonceSize:]
}

func (s Sealed) String() string {
	return base64.StdEncoding.EncodeToString(s)
}
