package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

func TestHKDFKekDeriver_Derive(t *testing.T) {
	aeadManager := NewAEADManager(nil)
	km := NewKeyManager(aeadManager, nil)
	credID := []byte("credential-id-bytes")
	clientID := make([]byte, cryptoDomain.ClientIDSize)
	clientID[0] = 1

	dek, err := km.GenerateDek()
	require.NoError(t, err)

	t.Run("deterministic across instances", func(t *testing.T) {
		k1, err := NewKekDeriver(aeadManager, "").Derive(credID, clientID)
		require.NoError(t, err)
		k2, err := NewKekDeriver(aeadManager, DefaultFallbackSalt).Derive(credID, clientID)
		require.NoError(t, err)

		wrapped, err := km.WrapDek(dek, k1)
		require.NoError(t, err)
		out, err := km.UnwrapDek(wrapped, k2)
		require.NoError(t, err)
		assert.Equal(t, dek, out)
	})

	t.Run("different client id yields a different key", func(t *testing.T) {
		k1, err := NewKekDeriver(aeadManager, "").Derive(credID, clientID)
		require.NoError(t, err)
		otherClient := make([]byte, cryptoDomain.ClientIDSize)
		k2, err := NewKekDeriver(aeadManager, "").Derive(credID, otherClient)
		require.NoError(t, err)

		wrapped, err := km.WrapDek(dek, k1)
		require.NoError(t, err)
		_, err = km.UnwrapDek(wrapped, k2)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("salt is part of the derivation", func(t *testing.T) {
		k1, err := NewKekDeriver(aeadManager, "salt-a").Derive(credID, clientID)
		require.NoError(t, err)
		k2, err := NewKekDeriver(aeadManager, "salt-b").Derive(credID, clientID)
		require.NoError(t, err)

		wrapped, err := km.WrapDek(dek, k1)
		require.NoError(t, err)
		_, err = km.UnwrapDek(wrapped, k2)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		cred := []byte{1, 2, 3}
		_, err := NewKekDeriver(aeadManager, "").Derive(cred, clientID)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, cred)
		assert.Equal(t, byte(1), clientID[0])
	})
}
