package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	keystoreRepository "github.com/l2obin/dekbind/internal/keystore/repository"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func newParams() *authnDomain.CreationParams {
	return &authnDomain.CreationParams{
		RelyingPartyID:   "localhost",
		RelyingPartyName: "Local Demo",
		UserID:           []byte("0123456789abcdef"),
		UserName:         "local-user",
		DisplayName:      "Local User",
		Algorithms:       []authnDomain.COSEAlgorithm{authnDomain.ES256, authnDomain.RS256},
		Attachment:       authnDomain.AttachmentPlatform,
		UserVerification: authnDomain.UserVerificationRequired,
		Attestation:      "none",
	}
}

func TestSoftAuthenticator_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := keystoreRepository.NewMemoryStore()
		auth := NewSoftAuthenticator(store, SoftAuthenticatorConfig{HMACSecret: true})

		id1, err := auth.Create(ctx, newParams())
		require.NoError(t, err)
		id2, err := auth.Create(ctx, newParams())
		require.NoError(t, err)

		assert.Len(t, id1, 32)
		assert.NotEqual(t, id1, id2)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("Error_UnsupportedAlgorithms", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{})
		params := newParams()
		params.Algorithms = []authnDomain.COSEAlgorithm{-8}

		_, err := auth.Create(ctx, params)
		assert.ErrorIs(t, err, authnDomain.ErrUnsupportedAlgorithms)
	})

	t.Run("Error_Cancelled", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := auth.Create(cancelled, newParams())
		assert.ErrorIs(t, err, authnDomain.ErrUserCancelled)
	})

	t.Run("Error_RandomSource", func(t *testing.T) {
		auth := NewSoftAuthenticator(
			keystoreRepository.NewMemoryStore(),
			SoftAuthenticatorConfig{Random: failingReader{}},
		)

		_, err := auth.Create(ctx, newParams())
		assert.ErrorIs(t, err, cryptoDomain.ErrRandomSourceUnavailable)
	})
}

func TestSoftAuthenticator_GetAssertion(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_WithSecret", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{HMACSecret: true})
		id, err := auth.Create(ctx, newParams())
		require.NoError(t, err)

		r1, err := auth.GetAssertion(ctx, id, true)
		require.NoError(t, err)
		r2, err := auth.GetAssertion(ctx, id, true)
		require.NoError(t, err)

		assert.Len(t, r1.HMACSecret, cryptoDomain.KeySize)
		assert.Equal(t, r1.HMACSecret, r2.HMACSecret)
		assert.Equal(t, []byte("0123456789abcdef"), r1.UserHandle)
		assert.Equal(t, id, r1.CredentialID)
	})

	t.Run("Success_SecretNotRequested", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{HMACSecret: true})
		id, err := auth.Create(ctx, newParams())
		require.NoError(t, err)

		r, err := auth.GetAssertion(ctx, id, false)
		require.NoError(t, err)
		assert.Nil(t, r.HMACSecret)
	})

	t.Run("Success_ExtensionDisabled", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{HMACSecret: false})
		id, err := auth.Create(ctx, newParams())
		require.NoError(t, err)

		r, err := auth.GetAssertion(ctx, id, true)
		require.NoError(t, err)
		assert.Nil(t, r.HMACSecret)
	})

	t.Run("Secret_DependsOnSaltAndCredential", func(t *testing.T) {
		store := keystoreRepository.NewMemoryStore()
		authA := NewSoftAuthenticator(store, SoftAuthenticatorConfig{HMACSecret: true, Salt: "a"})
		authB := NewSoftAuthenticator(store, SoftAuthenticatorConfig{HMACSecret: true, Salt: "b"})

		id1, err := authA.Create(ctx, newParams())
		require.NoError(t, err)
		id2, err := authA.Create(ctx, newParams())
		require.NoError(t, err)

		a1, err := authA.GetAssertion(ctx, id1, true)
		require.NoError(t, err)
		b1, err := authB.GetAssertion(ctx, id1, true)
		require.NoError(t, err)
		a2, err := authA.GetAssertion(ctx, id2, true)
		require.NoError(t, err)

		assert.NotEqual(t, a1.HMACSecret, b1.HMACSecret)
		assert.NotEqual(t, a1.HMACSecret, a2.HMACSecret)
	})

	t.Run("Error_UnknownCredential", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{HMACSecret: true})

		_, err := auth.GetAssertion(ctx, authnDomain.CredentialID("nope"), true)
		assert.ErrorIs(t, err, authnDomain.ErrCredentialNotFound)
		assert.ErrorIs(t, err, authnDomain.ErrAssertionFailed)
	})

	t.Run("Error_Cancelled", func(t *testing.T) {
		auth := NewSoftAuthenticator(keystoreRepository.NewMemoryStore(), SoftAuthenticatorConfig{HMACSecret: true})
		id, err := auth.Create(ctx, newParams())
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = auth.GetAssertion(cancelled, id, true)
		assert.ErrorIs(t, err, authnDomain.ErrUserCancelled)
	})
}
