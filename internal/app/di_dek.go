package app

import (
	"fmt"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekHTTP "github.com/l2obin/dekbind/internal/dek/http"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
)

// DekManager returns the DEK lifecycle manager. Shutdown closes it.
func (c *Container) DekManager() (dekUseCase.DekManager, error) {
	var err error
	c.dekManagerInit.Do(func() {
		c.dekManager, err = c.initDekManager()
		if err != nil {
			c.initErrors["dekManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dekManager"]; exists {
		return nil, storedErr
	}
	return c.dekManager, nil
}

// DekHandler returns the HTTP handler for DEK operations.
func (c *Container) DekHandler() (*dekHTTP.DekHandler, error) {
	var err error
	c.dekHandlerInit.Do(func() {
		c.dekHandler, err = c.initDekHandler()
		if err != nil {
			c.initErrors["dekHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dekHandler"]; exists {
		return nil, storedErr
	}
	return c.dekHandler, nil
}

// initDekManager creates the DEK manager with all its dependencies.
func (c *Container) initDekManager() (dekUseCase.DekManager, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.DekAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid dek algorithm %q: %w", c.config.DekAlgorithm, err)
	}

	store, err := c.Keystore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for dek manager: %w", err)
	}

	kekUseCase, err := c.KekUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get kek use case for dek manager: %w", err)
	}

	bindingUseCase, err := c.BindingUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get binding use case for dek manager: %w", err)
	}

	baseManager := dekUseCase.NewDekManager(
		dekUseCase.Config{
			ExposureWindow: c.config.DekExposureWindow,
			Algorithm:      algorithm,
		},
		store,
		c.AEADManager(),
		c.KeyManager(),
		kekUseCase,
		bindingUseCase,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			baseManager.Close()
			return nil, fmt.Errorf("failed to get business metrics for dek manager: %w", err)
		}
		return dekUseCase.NewDekManagerWithMetrics(baseManager, businessMetrics), nil
	}

	return baseManager, nil
}

// initDekHandler creates the DEK HTTP handler.
func (c *Container) initDekHandler() (*dekHTTP.DekHandler, error) {
	manager, err := c.DekManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get dek manager for dek handler: %w", err)
	}

	return dekHTTP.NewDekHandler(manager, c.Logger()), nil
}
