package service

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
//
// It shares the nonce and tag sizes of AES-GCM and is the faster choice on
// platforms without hardware AES acceleration.
type ChaCha20Poly1305Cipher struct {
	aead   cipher.AEAD
	random io.Reader
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher drawing nonces from crypto/rand.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	return newChaCha20Poly1305(key, rand.Reader)
}

func newChaCha20Poly1305(key []byte, random io.Reader) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead, random: random}, nil
}

// Encrypt encrypts plaintext with a fresh random nonce.
func (c *ChaCha20Poly1305Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce, err = readNonce(c.random, c.aead.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt authenticates and decrypts ciphertext.
func (c *ChaCha20Poly1305Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, cryptoDomain.ErrMalformedWrappedDek
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
