package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrappedDek(t *testing.T) {
	nonce := bytes.Repeat([]byte{1}, NonceSize)
	ciphertext := bytes.Repeat([]byte{2}, KeySize+TagSize)

	w := NewWrappedDek(nonce, ciphertext)

	require.NoError(t, w.Validate())
	assert.Len(t, w, NonceSize+KeySize+TagSize)
	assert.Equal(t, nonce, w.Nonce())
	assert.Equal(t, ciphertext, w.Ciphertext())
}

func TestParseWrappedDek(t *testing.T) {
	t.Run("round trips through base64", func(t *testing.T) {
		w := NewWrappedDek(make([]byte, NonceSize), bytes.Repeat([]byte{7}, 48))

		parsed, err := ParseWrappedDek(w.String())

		require.NoError(t, err)
		assert.Equal(t, w, parsed)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, err := ParseWrappedDek("not base64 !!!")
		assert.ErrorIs(t, err, ErrMalformedWrappedDek)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("rejects blob shorter than nonce and tag", func(t *testing.T) {
		short := NewWrappedDek(make([]byte, NonceSize), make([]byte, TagSize-1))
		_, err := ParseWrappedDek(short.String())
		assert.ErrorIs(t, err, ErrMalformedWrappedDek)
	})
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("aes-gcm")
	require.NoError(t, err)
	assert.Equal(t, AESGCM, alg)

	alg, err = ParseAlgorithm("chacha20-poly1305")
	require.NoError(t, err)
	assert.Equal(t, ChaCha20, alg)

	_, err = ParseAlgorithm("AES-GCM")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
