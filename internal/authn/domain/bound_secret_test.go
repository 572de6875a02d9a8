package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundSecret(t *testing.T) {
	t.Run("present with 32 bytes", func(t *testing.T) {
		secret := bytes.Repeat([]byte{1}, 32)
		b := BoundSecret{Outcome: SecretPresent, Secret: secret}

		assert.True(t, b.HasSecret())

		b.Discard()
		assert.Nil(t, b.Secret)
		assert.Equal(t, make([]byte, 32), secret)
	})

	t.Run("present with wrong size is not usable", func(t *testing.T) {
		b := BoundSecret{Outcome: SecretPresent, Secret: []byte{1, 2}}
		assert.False(t, b.HasSecret())
	})

	t.Run("unsupported and failed carry no secret", func(t *testing.T) {
		assert.False(t, (&BoundSecret{Outcome: SecretUnsupported}).HasSecret())
		assert.False(t, (&BoundSecret{Outcome: AssertionFailed, Reason: ErrUserCancelled}).HasSecret())
	})
}

func TestSecretOutcome_String(t *testing.T) {
	assert.Equal(t, "secret_present", SecretPresent.String())
	assert.Equal(t, "secret_unsupported", SecretUnsupported.String())
	assert.Equal(t, "assertion_failed", AssertionFailed.String())
	assert.Equal(t, "unknown", SecretOutcome(0).String())
}

func TestCredentialID_String(t *testing.T) {
	assert.Equal(t, "AQID", CredentialID{1, 2, 3}.String())
	assert.Equal(t, "", CredentialID(nil).String())
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrUserCancelled, ErrAssertionFailed)
	assert.ErrorIs(t, ErrInvalidSecretSize, ErrAssertionFailed)
	assert.NotErrorIs(t, ErrCredentialCreation, ErrAssertionFailed)
}
