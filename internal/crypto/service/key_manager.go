package service

import (
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// KeyManagerService implements KeyManager for a single-tier envelope: one DEK
// wrapped directly under a KEK that is either the authenticator's hmac-secret
// or the HKDF fallback.
type KeyManagerService struct {
	aeadManager AEADManager
	random      io.Reader
}

// NewKeyManager creates a new KeyManagerService. DEK bytes come from random,
// which defaults to crypto/rand when nil.
func NewKeyManager(aeadManager AEADManager, random io.Reader) *KeyManagerService {
	if random == nil {
		random = rand.Reader
	}
	return &KeyManagerService{
		aeadManager: aeadManager,
		random:      random,
	}
}

// GenerateDek returns 32 fresh random bytes.
func (km *KeyManagerService) GenerateDek() ([]byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(km.random, dek); err != nil {
		cryptoDomain.Zero(dek)
		return nil, fmt.Errorf("failed to generate DEK: %w: %v", cryptoDomain.ErrRandomSourceUnavailable, err)
	}
	return dek, nil
}

// ImportKek creates an AES-GCM handle from raw and zeroes raw whatever the outcome.
func (km *KeyManagerService) ImportKek(raw []byte) (AEAD, error) {
	defer cryptoDomain.Zero(raw)
	return km.aeadManager.CreateCipher(raw, cryptoDomain.AESGCM)
}

// WrapDek encrypts dek under kek and joins nonce and ciphertext.
func (km *KeyManagerService) WrapDek(dek []byte, kek AEAD) (cryptoDomain.WrappedDek, error) {
	if len(dek) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	ciphertext, nonce, err := kek.Encrypt(dek, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap DEK: %w", err)
	}

	return cryptoDomain.NewWrappedDek(nonce, ciphertext), nil
}

// UnwrapDek splits and decrypts a wrapped DEK.
func (km *KeyManagerService) UnwrapDek(wrapped cryptoDomain.WrappedDek, kek AEAD) ([]byte, error) {
	if err := wrapped.Validate(); err != nil {
		return nil, err
	}

	dek, err := kek.Decrypt(wrapped.Ciphertext(), wrapped.Nonce(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap DEK: %w", cryptoDomain.ErrDecryptionFailed)
	}
	if len(dek) != cryptoDomain.KeySize {
		cryptoDomain.Zero(dek)
		return nil, fmt.Errorf("failed to unwrap DEK: %w", cryptoDomain.ErrInvalidKeySize)
	}

	return dek, nil
}
