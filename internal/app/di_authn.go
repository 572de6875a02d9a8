package app

import (
	"fmt"
	"log/slog"

	authnService "github.com/l2obin/dekbind/internal/authn/service"
	authnUseCase "github.com/l2obin/dekbind/internal/authn/usecase"
	"github.com/l2obin/dekbind/internal/config"
)

// Authenticator returns the authenticator selected by AUTHENTICATOR_BACKEND.
func (c *Container) Authenticator() (authnService.Authenticator, error) {
	var err error
	c.authenticatorInit.Do(func() {
		c.authenticator, err = c.initAuthenticator()
		if err != nil {
			c.initErrors["authenticator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authenticator"]; exists {
		return nil, storedErr
	}
	return c.authenticator, nil
}

// BindingUseCase returns the credential binding use case.
func (c *Container) BindingUseCase() (authnUseCase.BindingUseCase, error) {
	var err error
	c.bindingUseCaseInit.Do(func() {
		c.bindingUseCase, err = c.initBindingUseCase()
		if err != nil {
			c.initErrors["bindingUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bindingUseCase"]; exists {
		return nil, storedErr
	}
	return c.bindingUseCase, nil
}

// initAuthenticator creates the configured authenticator backend.
func (c *Container) initAuthenticator() (authnService.Authenticator, error) {
	switch c.config.AuthenticatorBackend {
	case config.AuthenticatorSoft:
		store, err := c.Keystore()
		if err != nil {
			return nil, fmt.Errorf("failed to get key store for soft authenticator: %w", err)
		}

		c.Logger().Warn("using the software authenticator, secrets have no hardware protection",
			slog.Bool("hmac_secret", c.config.AuthenticatorHMACSecret),
		)

		return authnService.NewSoftAuthenticator(store, authnService.SoftAuthenticatorConfig{
			HMACSecret: c.config.AuthenticatorHMACSecret,
			Salt:       c.config.AuthenticatorHMACSalt,
		}), nil
	case config.AuthenticatorFIDO2:
		authenticator, err := authnService.NewFIDO2Authenticator(authnService.FIDO2Config{
			DevicePath: c.config.FIDO2DevicePath,
			PIN:        c.config.FIDO2PIN,
			Salt:       c.config.AuthenticatorHMACSalt,
		}, c.config.RelyingPartyID)
		if err != nil {
			return nil, fmt.Errorf("failed to create fido2 authenticator: %w", err)
		}
		return authenticator, nil
	default:
		return nil, fmt.Errorf("unsupported authenticator backend: %s", c.config.AuthenticatorBackend)
	}
}

// initBindingUseCase creates the binding use case with all its dependencies.
func (c *Container) initBindingUseCase() (authnUseCase.BindingUseCase, error) {
	store, err := c.Keystore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for binding use case: %w", err)
	}

	authenticator, err := c.Authenticator()
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticator for binding use case: %w", err)
	}

	kekUseCase, err := c.KekUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get kek use case for binding use case: %w", err)
	}

	return authnUseCase.NewBindingUseCase(store, authenticator, kekUseCase, authnUseCase.BindingConfig{
		RelyingPartyID:   c.config.RelyingPartyID,
		RelyingPartyName: c.config.RelyingPartyName,
		UserName:         c.config.CredentialUserName,
		DisplayName:      c.config.CredentialDisplayName,
	}, c.Logger()), nil
}
