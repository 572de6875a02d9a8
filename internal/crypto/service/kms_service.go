package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper seals and opens small values with a KMS-held key. *secrets.Keeper implements it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for KMS key URIs.
type KMSService interface {
	// OpenKeeper opens a Keeper for the provider named by the URI scheme.
	// Supports gcpkms://, awskms://, azurekeyvault://, hashivault:// and base64key://.
	OpenKeeper(ctx context.Context, keyURI string) (Keeper, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}
