package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// DefaultFallbackSalt is the HKDF salt used when none is configured.
const DefaultFallbackSalt = "webauthn-demo-salt"

// HKDFKekDeriver derives a software KEK from the credential id and client id.
//
// The derivation is deterministic and uses only values persisted locally, so
// anyone holding the store can reproduce the KEK. It exists so the envelope
// keeps working on authenticators without hmac-secret and is always gated by
// an explicit opt-in.
type HKDFKekDeriver struct {
	aeadManager AEADManager
	salt        []byte
}

// NewKekDeriver creates a deriver with the given salt. An empty salt selects
// DefaultFallbackSalt.
func NewKekDeriver(aeadManager AEADManager, salt string) *HKDFKekDeriver {
	if salt == "" {
		salt = DefaultFallbackSalt
	}
	return &HKDFKekDeriver{
		aeadManager: aeadManager,
		salt:        []byte(salt),
	}
}

// Derive runs HKDF-SHA256(ikm = credentialID ‖ clientID, salt, info = "") and
// imports the 32-byte output as an AES-GCM key.
func (d *HKDFKekDeriver) Derive(credentialID, clientID []byte) (AEAD, error) {
	ikm := make([]byte, 0, len(credentialID)+len(clientID))
	ikm = append(ikm, credentialID...)
	ikm = append(ikm, clientID...)
	defer cryptoDomain.Zero(ikm)

	raw := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(raw)

	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, d.salt, nil), raw); err != nil {
		return nil, fmt.Errorf("failed to derive fallback KEK: %w", err)
	}

	return d.aeadManager.CreateCipher(raw, cryptoDomain.AESGCM)
}
