package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"gocloud.dev/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("Error_EmptyURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "")
		assert.Error(t, err)
		assert.Nil(t, keeper)
	})
}

func TestKMSService_SealAndOpen(t *testing.T) {
	ctx := context.Background()
	keeper, err := NewKMSService().OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, keeper.Close())
	}()

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{name: "ClientID", plaintext: make([]byte, 32)},
		{name: "WrappedDekText", plaintext: []byte("AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=")},
		{name: "BinaryData", plaintext: []byte{0x00, 0x01, 0xFF, 0xFE}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := keeper.Encrypt(ctx, tc.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tc.plaintext, ciphertext)

			decrypted, err := keeper.Decrypt(ctx, ciphertext)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, decrypted)
		})
	}
}

func TestKMSService_DifferentKeysDoNotOpen(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	keeper1, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, keeper1.Close()) }()

	keeper2, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, keeper2.Close()) }()

	ciphertext, err := keeper1.Encrypt(ctx, []byte("test data"))
	require.NoError(t, err)

	decrypted, err := keeper2.Decrypt(ctx, ciphertext)
	assert.Error(t, err)
	assert.Nil(t, decrypted)

	_, err = keeper1.Decrypt(ctx, []byte("not a valid ciphertext"))
	assert.Error(t, err)
}
