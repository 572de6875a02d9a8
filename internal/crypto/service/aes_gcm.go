package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// Nonces are 12 random bytes per call and the 16-byte tag is appended to the
// ciphertext. The cipher keeps only the expanded key schedule, so the caller
// may zero the key slice once NewAESGCM returns. Safe for concurrent use.
type AESGCMCipher struct {
	aead   cipher.AEAD
	random io.Reader
}

// NewAESGCM creates a new AES-256-GCM cipher drawing nonces from crypto/rand.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	return newAESGCM(key, rand.Reader)
}

func newAESGCM(key []byte, random io.Reader) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead, random: random}, nil
}

// Encrypt encrypts plaintext with a fresh random nonce. The returned ciphertext
// carries the authentication tag.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce, err = readNonce(a.random, a.aead.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt authenticates and decrypts ciphertext. A wrong key, nonce, AAD or a
// modified ciphertext all return ErrDecryptionFailed.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, cryptoDomain.ErrMalformedWrappedDek
	}
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

func readNonce(random io.Reader, size int) ([]byte, error) {
	nonce := make([]byte, size)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w: %v", cryptoDomain.ErrRandomSourceUnavailable, err)
	}
	return nonce, nil
}
