package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
	dekMocks "github.com/l2obin/dekbind/internal/dek/mocks"
)

func testWrapped() cryptoDomain.WrappedDek {
	return cryptoDomain.NewWrappedDek(bytes.Repeat([]byte{1}, 12), bytes.Repeat([]byte{2}, 48))
}

func TestRunStatus(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		supported := true
		until := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Status", ctx).Return(&dekDomain.Status{
			CredentialPresent:       true,
			ClientIDPresent:         false,
			HardwareSecretSupported: &supported,
			WrappedDekPresent:       true,
			DekExposed:              true,
			ExposedUntil:            &until,
		}, nil)

		var out bytes.Buffer
		err := RunStatus(ctx, mockManager, logger, &out, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Credential:              yes")
		assert.Contains(t, out.String(), "Client ID:               no")
		assert.Contains(t, out.String(), "Hardware secret support: yes")
		assert.Contains(t, out.String(), "DEK exposed until:       2026-01-02T03:04:05Z")
		mockManager.AssertExpectations(t)
	})

	t.Run("json-output-unknown-support", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Status", ctx).Return(&dekDomain.Status{}, nil)

		var out bytes.Buffer
		err := RunStatus(ctx, mockManager, logger, &out, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"credential_present": false`)
		assert.Contains(t, out.String(), `"hardware_secret_supported": null`)
		assert.NotContains(t, out.String(), "exposed_until")
	})

	t.Run("storage-error", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		storageErr := dekDomain.NewError(dekDomain.KindStorage, "status", errors.New("disk"))
		mockManager.On("Status", ctx).Return(nil, storageErr)

		err := RunStatus(ctx, mockManager, logger, &bytes.Buffer{}, "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, dekDomain.ErrStorage)
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		err := RunStatus(ctx, mockManager, logger, &bytes.Buffer{}, "yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
		mockManager.AssertNotCalled(t, "Status", mock.Anything)
	})
}

func TestRunCreateCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	id := authnDomain.CredentialID("cred-1")

	t.Run("text-output", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("EnsureCredential", ctx).Return(id, nil)

		var out bytes.Buffer
		err := RunCreateCredential(ctx, mockManager, logger, &out, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Credential ID: "+id.String())
		mockManager.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("EnsureCredential", ctx).Return(id, nil)

		var out bytes.Buffer
		err := RunCreateCredential(ctx, mockManager, logger, &out, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"credential_id": "`+id.String()+`"`)
	})

	t.Run("creation-refused", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		creationErr := dekDomain.NewError(dekDomain.KindCredentialCreation, "ensure_credential", errors.New("refused"))
		mockManager.On("EnsureCredential", ctx).Return(nil, creationErr)

		err := RunCreateCredential(ctx, mockManager, logger, &bytes.Buffer{}, "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, dekDomain.ErrCredentialCreation)
	})
}

func TestRunWrap(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	wrapped := testWrapped()

	t.Run("text-output", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Generate", ctx).Return(&dekDomain.Exposure{Generation: 1}, nil).Once()
		mockManager.On("Wrap", ctx, false).
			Return(&dekDomain.WrapResult{Wrapped: wrapped, KekSource: dekDomain.KekSourceHardware}, nil).
			Once()

		var out bytes.Buffer
		err := RunWrap(ctx, mockManager, logger, &out, false, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Wrapped DEK: "+wrapped.String())
		assert.Contains(t, out.String(), "KEK source:  hardware")
		mockManager.AssertExpectations(t)
	})

	t.Run("json-output-fallback", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Generate", ctx).Return(&dekDomain.Exposure{Generation: 1}, nil)
		mockManager.On("Wrap", ctx, true).
			Return(&dekDomain.WrapResult{Wrapped: wrapped, KekSource: dekDomain.KekSourceFallback}, nil)

		var out bytes.Buffer
		err := RunWrap(ctx, mockManager, logger, &out, true, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"kek_source": "fallback"`)
		assert.Contains(t, out.String(), `"wrapped": "`+wrapped.String()+`"`)
	})

	t.Run("generate-error", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		randomErr := dekDomain.NewError(dekDomain.KindRandomSourceUnavailable, "generate", errors.New("no entropy"))
		mockManager.On("Generate", ctx).Return(nil, randomErr)

		err := RunWrap(ctx, mockManager, logger, &bytes.Buffer{}, false, "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, dekDomain.ErrRandomSourceUnavailable)
		mockManager.AssertNotCalled(t, "Wrap", mock.Anything, mock.Anything)
	})

	t.Run("hardware-secret-unavailable", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Generate", ctx).Return(&dekDomain.Exposure{Generation: 1}, nil)
		hwErr := dekDomain.NewError(dekDomain.KindHardwareSecretUnavailable, "wrap", nil)
		mockManager.On("Wrap", ctx, false).Return(nil, hwErr)

		var out bytes.Buffer
		err := RunWrap(ctx, mockManager, logger, &out, false, "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, dekDomain.ErrHardwareSecretUnavailable)
		assert.Empty(t, out.String())
	})
}

func TestRunUnwrap(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &dekDomain.UnwrapResult{ExpiresAt: expiresAt, KekSource: dekDomain.KekSourceHardware}

	t.Run("from-key-store", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Unwrap", ctx, false, cryptoDomain.WrappedDek(nil)).Return(result, nil)

		var out bytes.Buffer
		err := RunUnwrap(ctx, mockManager, logger, &out, UnwrapOptions{}, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "KEK source: hardware")
		assert.Contains(t, out.String(), "Expires at: 2026-01-02T03:04:05Z")
		assert.NotContains(t, out.String(), "DEK:")
		mockManager.AssertNotCalled(t, "Exposed")
	})

	t.Run("explicit-wrapped-revealed", func(t *testing.T) {
		wrapped := testWrapped()
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Unwrap", ctx, true, wrapped).Return(result, nil)
		mockManager.On("Exposed").Return(&dekDomain.ExposedDek{Encoded: "ZGVr", ExpiresAt: expiresAt}, true)

		var out bytes.Buffer
		err := RunUnwrap(ctx, mockManager, logger, &out, UnwrapOptions{
			AllowFallback: true,
			Wrapped:       wrapped.String(),
			Reveal:        true,
		}, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"dek": "ZGVr"`)
		assert.Contains(t, out.String(), `"kek_source": "hardware"`)
		mockManager.AssertExpectations(t)
	})

	t.Run("malformed-wrapped", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}

		err := RunUnwrap(ctx, mockManager, logger, &bytes.Buffer{}, UnwrapOptions{Wrapped: "not base64!"}, "text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid wrapped DEK")
		mockManager.AssertNotCalled(t, "Unwrap", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no-wrapped-dek", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		noWrapped := dekDomain.NewError(dekDomain.KindNoWrappedDek, "unwrap", nil)
		mockManager.On("Unwrap", ctx, false, cryptoDomain.WrappedDek(nil)).Return(nil, noWrapped)

		err := RunUnwrap(ctx, mockManager, logger, &bytes.Buffer{}, UnwrapOptions{}, "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, dekDomain.ErrNoWrappedDek)
	})

	t.Run("expired-before-reveal", func(t *testing.T) {
		mockManager := &dekMocks.MockDekManager{}
		mockManager.On("Unwrap", ctx, false, cryptoDomain.WrappedDek(nil)).Return(result, nil)
		mockManager.On("Exposed").Return(nil, false)

		err := RunUnwrap(ctx, mockManager, logger, &bytes.Buffer{}, UnwrapOptions{Reveal: true}, "text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no longer exposed")
	})
}
