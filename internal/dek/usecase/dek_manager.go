package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	authnUseCase "github.com/l2obin/dekbind/internal/authn/usecase"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	cryptoService "github.com/l2obin/dekbind/internal/crypto/service"
	cryptoUseCase "github.com/l2obin/dekbind/internal/crypto/usecase"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
	apperrors "github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// Config holds the DekManager tunables.
type Config struct {
	// ExposureWindow bounds plaintext lifetime; zero selects the default.
	ExposureWindow time.Duration
	// Algorithm of the in-process DEK handle; empty selects AES-GCM.
	Algorithm cryptoDomain.Algorithm
}

type dekManager struct {
	sem         chan struct{}
	slot        *dekDomain.ExposureSlot
	algorithm   cryptoDomain.Algorithm
	store       keystoreDomain.Store
	aeadManager cryptoService.AEADManager
	keyManager  cryptoService.KeyManager
	keks        cryptoUseCase.KekUseCase
	binding     authnUseCase.BindingUseCase
	logger      *slog.Logger

	hwMu         sync.Mutex
	lastHardware *bool
}

func (m *dekManager) acquire(ctx context.Context, op string) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return dekDomain.NewError(dekDomain.KindUnknown, op, ctx.Err())
	}
}

func (m *dekManager) release() {
	<-m.sem
}

func (m *dekManager) Generate(ctx context.Context) (*dekDomain.Exposure, error) {
	const op = "generate"
	if err := m.acquire(ctx, op); err != nil {
		return nil, err
	}
	defer m.release()

	dek, err := m.keyManager.GenerateDek()
	if err != nil {
		return nil, classify(op, err, dekDomain.KindUnknown)
	}

	cipher, err := m.aeadManager.CreateCipher(dek, m.algorithm)
	if err != nil {
		cryptoDomain.Zero(dek)
		return nil, classify(op, err, dekDomain.KindUnknown)
	}

	exposure := m.slot.Install(dek, cipher)
	m.logger.Info("dek generated", slog.Time("expires_at", exposure.ExpiresAt))
	return &exposure, nil
}

func (m *dekManager) Wrap(ctx context.Context, allowFallback bool) (*dekDomain.WrapResult, error) {
	const op = "wrap"
	if err := m.acquire(ctx, op); err != nil {
		return nil, err
	}
	defer m.release()

	exposure, ok := m.slot.Current()
	if !ok {
		return nil, dekDomain.NewError(dekDomain.KindNoDekAvailable, op, nil)
	}

	credentialID, err := m.binding.EnsureCredential(ctx)
	if err != nil {
		return nil, classify(op, err, dekDomain.KindStorage)
	}

	kek, source, err := m.resolveKek(ctx, op, credentialID, allowFallback)
	if err != nil {
		return nil, err
	}

	var wrapped cryptoDomain.WrappedDek
	var wrapErr error
	held := m.slot.With(exposure.Generation, func(dek []byte) {
		wrapped, wrapErr = m.keyManager.WrapDek(dek, kek)
	})
	if !held {
		m.logger.Warn("exposure window elapsed while waiting for the authenticator")
		return nil, dekDomain.NewError(dekDomain.KindNoDekAvailable, op, nil)
	}
	if wrapErr != nil {
		return nil, classify(op, wrapErr, dekDomain.KindUnknown)
	}

	if err := m.store.Set(ctx, keystoreDomain.KeyWrappedDek, []byte(wrapped.String())); err != nil {
		return nil, dekDomain.NewError(dekDomain.KindStorage, op, err)
	}

	m.slot.ClearIf(exposure.Generation)

	m.logger.Info("dek wrapped",
		slog.String("kek_source", string(source)),
		slog.String("credential_id", credentialID.String()),
	)
	return &dekDomain.WrapResult{Wrapped: wrapped, KekSource: source}, nil
}

func (m *dekManager) Unwrap(
	ctx context.Context,
	allowFallback bool,
	wrapped cryptoDomain.WrappedDek,
) (*dekDomain.UnwrapResult, error) {
	const op = "unwrap"
	if err := m.acquire(ctx, op); err != nil {
		return nil, err
	}
	defer m.release()

	wrapped, err := m.loadWrapped(ctx, op, wrapped)
	if err != nil {
		return nil, err
	}

	credentialID, err := m.binding.EnsureCredential(ctx)
	if err != nil {
		return nil, classify(op, err, dekDomain.KindStorage)
	}

	kek, source, err := m.resolveKek(ctx, op, credentialID, allowFallback)
	if err != nil {
		return nil, err
	}

	dek, err := m.keyManager.UnwrapDek(wrapped, kek)
	if err != nil {
		m.logger.Warn("dek unwrap authentication failed", slog.String("kek_source", string(source)))
		return nil, dekDomain.NewError(dekDomain.KindUnwrapAuthFailure, op, err)
	}

	cipher, err := m.aeadManager.CreateCipher(dek, m.algorithm)
	if err != nil {
		cryptoDomain.Zero(dek)
		return nil, classify(op, err, dekDomain.KindUnknown)
	}

	exposure := m.slot.Install(dek, cipher)
	m.logger.Info("dek unwrapped",
		slog.String("kek_source", string(source)),
		slog.Time("expires_at", exposure.ExpiresAt),
	)
	return &dekDomain.UnwrapResult{ExpiresAt: exposure.ExpiresAt, KekSource: source}, nil
}

func (m *dekManager) loadWrapped(
	ctx context.Context,
	op string,
	wrapped cryptoDomain.WrappedDek,
) (cryptoDomain.WrappedDek, error) {
	if wrapped != nil {
		if err := wrapped.Validate(); err != nil {
			return nil, dekDomain.NewError(dekDomain.KindUnwrapAuthFailure, op, err)
		}
		return wrapped, nil
	}

	raw, err := m.store.Get(ctx, keystoreDomain.KeyWrappedDek)
	if apperrors.Is(err, keystoreDomain.ErrKeyNotFound) {
		return nil, dekDomain.NewError(dekDomain.KindNoWrappedDek, op, nil)
	}
	if err != nil {
		return nil, dekDomain.NewError(dekDomain.KindStorage, op, err)
	}

	parsed, err := cryptoDomain.ParseWrappedDek(string(raw))
	if err != nil {
		return nil, dekDomain.NewError(dekDomain.KindUnwrapAuthFailure, op, err)
	}
	return parsed, nil
}

// resolveKek runs the fallback policy for one call and returns the KEK it selects.
func (m *dekManager) resolveKek(
	ctx context.Context,
	op string,
	credentialID authnDomain.CredentialID,
	allowFallback bool,
) (cryptoService.AEAD, dekDomain.KekSource, error) {
	policy := dekDomain.NewKekPolicy(allowFallback)

	bound := m.binding.TryGetBoundSecret(ctx, credentialID)
	defer bound.Discard()
	if bound.Outcome != authnDomain.AssertionFailed {
		m.recordHardware(bound.HasSecret())
	}

	if err := policy.Observe(bound.HasSecret()); err != nil {
		return nil, "", dekDomain.NewError(dekDomain.KindUnknown, op, err)
	}

	if policy.State() == dekDomain.PolicyHardwareSecretConfirmed {
		secret := bound.Secret
		bound.Secret = nil
		kek, err := m.keks.ImportHardwareKek(secret)
		if err != nil {
			return nil, "", classify(op, err, dekDomain.KindUnknown)
		}
		return kek, dekDomain.KekSourceHardware, nil
	}

	state, err := policy.Resolve()
	if err != nil {
		return nil, "", dekDomain.NewError(dekDomain.KindUnknown, op, err)
	}

	if state == dekDomain.PolicyAborted {
		m.logger.Warn("hardware secret unavailable and fallback disallowed",
			slog.String("op", op),
			slog.String("outcome", bound.Outcome.String()),
			slog.Any("reason", bound.Reason),
		)
		return nil, "", dekDomain.NewError(dekDomain.KindHardwareSecretUnavailable, op, bound.Reason)
	}

	m.logger.Warn("deriving fallback kek",
		slog.String("op", op),
		slog.String("outcome", bound.Outcome.String()),
	)
	kek, err := m.keks.DeriveFallbackKek(ctx, credentialID)
	if err != nil {
		return nil, "", classify(op, err, dekDomain.KindStorage)
	}
	return kek, dekDomain.KekSourceFallback, nil
}

func (m *dekManager) recordHardware(supported bool) {
	m.hwMu.Lock()
	defer m.hwMu.Unlock()
	m.lastHardware = &supported
}

func (m *dekManager) EnsureCredential(ctx context.Context) (authnDomain.CredentialID, error) {
	const op = "ensure_credential"
	if err := m.acquire(ctx, op); err != nil {
		return nil, err
	}
	defer m.release()

	id, err := m.binding.EnsureCredential(ctx)
	if err != nil {
		return nil, classify(op, err, dekDomain.KindStorage)
	}
	return id, nil
}

func (m *dekManager) Status(ctx context.Context) (*dekDomain.Status, error) {
	const op = "status"
	status := &dekDomain.Status{}

	_, present, err := m.binding.CredentialID(ctx)
	if err != nil {
		return nil, dekDomain.NewError(dekDomain.KindStorage, op, err)
	}
	status.CredentialPresent = present

	if status.ClientIDPresent, err = m.keks.ClientIDPresent(ctx); err != nil {
		return nil, dekDomain.NewError(dekDomain.KindStorage, op, err)
	}

	_, err = m.store.Get(ctx, keystoreDomain.KeyWrappedDek)
	switch {
	case err == nil:
		status.WrappedDekPresent = true
	case !apperrors.Is(err, keystoreDomain.ErrKeyNotFound):
		return nil, dekDomain.NewError(dekDomain.KindStorage, op, err)
	}

	if exposure, ok := m.slot.Current(); ok {
		status.DekExposed = true
		expiresAt := exposure.ExpiresAt
		status.ExposedUntil = &expiresAt
	}

	m.hwMu.Lock()
	if m.lastHardware != nil {
		supported := *m.lastHardware
		status.HardwareSecretSupported = &supported
	}
	m.hwMu.Unlock()

	return status, nil
}

func (m *dekManager) Exposed() (*dekDomain.ExposedDek, bool) {
	return m.slot.Exposed()
}

func (m *dekManager) Encrypt(ctx context.Context, plaintext []byte) (dekDomain.Sealed, error) {
	const op = "encrypt"
	if err := ctx.Err(); err != nil {
		return nil, dekDomain.NewError(dekDomain.KindUnknown, op, err)
	}

	var sealed dekDomain.Sealed
	var sealErr error
	_, ok := m.slot.WithCipher(func(c dekDomain.Cipher) {
		ciphertext, nonce, err := c.Encrypt(plaintext, nil)
		if err != nil {
			sealErr = err
			return
		}
		sealed = dekDomain.NewSealed(nonce, ciphertext)
	})
	if !ok {
		return nil, dekDomain.NewError(dekDomain.KindNoDekAvailable, op, nil)
	}
	if sealErr != nil {
		return nil, classify(op, sealErr, dekDomain.KindUnknown)
	}
	return sealed, nil
}

func (m *dekManager) Decrypt(ctx context.Context, sealed dekDomain.Sealed) ([]byte, error) {
	const op = "decrypt"
	if err := ctx.Err(); err != nil {
		return nil, dekDomain.NewError(dekDomain.KindUnknown, op, err)
	}
	if err := sealed.Validate(); err != nil {
		return nil, dekDomain.NewError(dekDomain.KindDecryptAuthFailure, op, err)
	}

	var plaintext []byte
	var openErr error
	_, ok := m.slot.WithCipher(func(c dekDomain.Cipher) {
		plaintext, openErr = c.Decrypt(sealed.Ciphertext(), sealed.Nonce(), nil)
	})
	if !ok {
		return nil, dekDomain.NewError(dekDomain.KindNoDekAvailable, op, nil)
	}
	if openErr != nil {
		return nil, dekDomain.NewError(dekDomain.KindDecryptAuthFailure, op, openErr)
	}
	return plaintext, nil
}

func (m *dekManager) Close() {
	m.slot.Close()
}

// classify maps lower-level sentinels onto the closed kind enumeration.
// fallback is used for errors no sentinel identifies.
func classify(op string, err error, fallback dekDomain.Kind) error {
	var dekErr *dekDomain.Error
	switch {
	case apperrors.As(err, &dekErr):
		return dekErr
	case apperrors.Is(err, cryptoDomain.ErrRandomSourceUnavailable):
		return dekDomain.NewError(dekDomain.KindRandomSourceUnavailable, op, err)
	case apperrors.Is(err, authnDomain.ErrCredentialCreation):
		return dekDomain.NewError(dekDomain.KindCredentialCreation, op, err)
	case apperrors.Is(err, cryptoDomain.ErrDecryptionFailed):
		return dekDomain.NewError(dekDomain.KindUnwrapAuthFailure, op, err)
	case apperrors.Is(err, context.Canceled), apperrors.Is(err, context.DeadlineExceeded):
		return dekDomain.NewError(dekDomain.KindUnknown, op, err)
	default:
		return dekDomain.NewError(fallback, op, err)
	}
}

// NewDekManager creates a DekManager. The caller must call Close.
func NewDekManager(
	cfg Config,
	store keystoreDomain.Store,
	aeadManager cryptoService.AEADManager,
	keyManager cryptoService.KeyManager,
	keks cryptoUseCase.KekUseCase,
	binding authnUseCase.BindingUseCase,
	logger *slog.Logger,
) DekManager {
	if cfg.Algorithm == "" {
		cfg.Algorithm = cryptoDomain.AESGCM
	}

	slot := dekDomain.NewExposureSlot(cfg.ExposureWindow)
	slot.OnClear(func(reason string) {
		logger.Debug("dek zeroized", slog.String("reason", reason))
	})

	return &dekManager{
		sem:         make(chan struct{}, 1),
		slot:        slot,
		algorithm:   cfg.Algorithm,
		store:       store,
		aeadManager: aeadManager,
		keyManager:  keyManager,
		keks:        keks,
		binding:     binding,
		logger:      logger,
	}
}
