package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	cryptoService "github.com/l2obin/dekbind/internal/crypto/service"
	apperrors "github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

type kekUseCase struct {
	store      keystoreDomain.Store
	keyManager cryptoService.KeyManager
	deriver    cryptoService.KekDeriver
	random     io.Reader
}

func (k *kekUseCase) EnsureClientID(ctx context.Context) ([]byte, error) {
	clientID, err := k.store.Get(ctx, keystoreDomain.KeyClientID)
	if err == nil {
		return clientID, nil
	}
	if !apperrors.Is(err, keystoreDomain.ErrKeyNotFound) {
		return nil, err
	}

	clientID = make([]byte, cryptoDomain.ClientIDSize)
	if _, err := io.ReadFull(k.random, clientID); err != nil {
		return nil, fmt.Errorf("failed to generate client id: %w: %v", cryptoDomain.ErrRandomSourceUnavailable, err)
	}
	if err := k.store.Set(ctx, keystoreDomain.KeyClientID, clientID); err != nil {
		return nil, err
	}
	return clientID, nil
}

func (k *kekUseCase) ClientIDPresent(ctx context.Context) (bool, error) {
	_, err := k.store.Get(ctx, keystoreDomain.KeyClientID)
	if apperrors.Is(err, keystoreDomain.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (k *kekUseCase) ImportHardwareKek(secret []byte) (cryptoService.AEAD, error) {
	if len(secret) != cryptoDomain.KeySize {
		cryptoDomain.Zero(secret)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return k.keyManager.ImportKek(secret)
}

func (k *kekUseCase) DeriveFallbackKek(ctx context.Context, credentialID []byte) (cryptoService.AEAD, error) {
	clientID, err := k.EnsureClientID(ctx)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(clientID)

	return k.deriver.Derive(credentialID, clientID)
}

// NewKekUseCase creates a new KekUseCase. Client ids are drawn from random,
// which defaults to crypto/rand when nil.
func NewKekUseCase(
	store keystoreDomain.Store,
	keyManager cryptoService.KeyManager,
	deriver cryptoService.KekDeriver,
	random io.Reader,
) KekUseCase {
	if random == nil {
		random = rand.Reader
	}
	return &kekUseCase{
		store:      store,
		keyManager: keyManager,
		deriver:    deriver,
		random:     random,
	}
}
