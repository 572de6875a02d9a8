package app

import (
	"fmt"

	cryptoService "github.com/l2obin/dekbind/internal/crypto/service"
	cryptoUseCase "github.com/l2obin/dekbind/internal/crypto/usecase"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = c.initAEADManager()
	})
	return c.aeadManager
}

// KeyManager returns the key manager service.
func (c *Container) KeyManager() cryptoService.KeyManager {
	c.keyManagerInit.Do(func() {
		c.keyManager = c.initKeyManager()
	})
	return c.keyManager
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = c.initKMSService()
	})
	return c.kmsService
}

// KekDeriver returns the fallback KEK deriver.
func (c *Container) KekDeriver() cryptoService.KekDeriver {
	c.kekDeriverInit.Do(func() {
		c.kekDeriver = c.initKekDeriver()
	})
	return c.kekDeriver
}

// KekUseCase returns the KEK use case.
func (c *Container) KekUseCase() (cryptoUseCase.KekUseCase, error) {
	var err error
	c.kekUseCaseInit.Do(func() {
		c.kekUseCase, err = c.initKekUseCase()
		if err != nil {
			c.initErrors["kekUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kekUseCase"]; exists {
		return nil, storedErr
	}
	return c.kekUseCase, nil
}

// initAEADManager creates the AEAD manager service.
func (c *Container) initAEADManager() cryptoService.AEADManager {
	return cryptoService.NewAEADManager(nil)
}

// initKeyManager creates the key manager service using the AEAD manager.
func (c *Container) initKeyManager() cryptoService.KeyManager {
	return cryptoService.NewKeyManager(c.AEADManager(), nil)
}

// initKMSService creates the KMS service used to seal the key store.
func (c *Container) initKMSService() cryptoService.KMSService {
	return cryptoService.NewKMSService()
}

// initKekDeriver creates the HKDF deriver with the configured salt.
func (c *Container) initKekDeriver() cryptoService.KekDeriver {
	return cryptoService.NewKekDeriver(c.AEADManager(), c.config.FallbackKDFSalt)
}

// initKekUseCase creates the KEK use case with all its dependencies.
func (c *Container) initKekUseCase() (cryptoUseCase.KekUseCase, error) {
	store, err := c.Keystore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for kek use case: %w", err)
	}

	return cryptoUseCase.NewKekUseCase(store, c.KeyManager(), c.KekDeriver(), nil), nil
}
