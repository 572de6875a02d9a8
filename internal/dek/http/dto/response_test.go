package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
)

func TestMapStatusToResponse(t *testing.T) {
	t.Run("UnknownHardwareSupportSerializesAsNull", func(t *testing.T) {
		response := MapStatusToResponse(&dekDomain.Status{CredentialPresent: true})

		raw, err := json.Marshal(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"credential_present": true,
			"client_id_present": false,
			"hardware_secret_supported": null,
			"wrapped_dek_present": false,
			"dek_exposed": false
		}`, string(raw))
	})

	t.Run("ExposedWithHardware", func(t *testing.T) {
		supported := true
		until := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		response := MapStatusToResponse(&dekDomain.Status{
			HardwareSecretSupported: &supported,
			DekExposed:              true,
			ExposedUntil:            &until,
		})

		require.NotNil(t, response.HardwareSecretSupported)
		assert.True(t, *response.HardwareSecretSupported)
		assert.True(t, response.DekExposed)
		assert.Equal(t, &until, response.ExposedUntil)
	})
}

func TestMapCredentialToResponse(t *testing.T) {
	response := MapCredentialToResponse(authnDomain.CredentialID{0xfb, 0xff})
	assert.Equal(t, "-_8", response.CredentialID)
}

func TestMapWrapResultToResponse(t *testing.T) {
	wrapped := cryptoDomain.NewWrappedDek(make([]byte, 12), make([]byte, 48))

	response := MapWrapResultToResponse(&dekDomain.WrapResult{
		Wrapped:   wrapped,
		KekSource: dekDomain.KekSourceHardware,
	})

	assert.Equal(t, wrapped.String(), response.Wrapped)
	assert.Equal(t, "hardware", response.KekSource)
}

func TestMapUnwrapResultToResponse(t *testing.T) {
	expiresAt := time.Now().UTC()

	response := MapUnwrapResultToResponse(&dekDomain.UnwrapResult{
		ExpiresAt: expiresAt,
		KekSource: dekDomain.KekSourceFallback,
	})

	assert.Equal(t, expiresAt, response.ExpiresAt)
	assert.Equal(t, "fallback", response.KekSource)
}
