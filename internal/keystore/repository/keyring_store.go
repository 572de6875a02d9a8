package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	apperrors "github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// KeyringConfig selects and configures an OS keyring backend.
type KeyringConfig struct {
	ServiceName string
	// FileDir enables the encrypted file backend, used when no OS keyring is
	// reachable (containers, CI).
	FileDir  string
	Password string
}

// OpenKeyring opens the platform keyring, falling back to the encrypted file
// backend when FileDir is set.
func OpenKeyring(cfg KeyringConfig) (keyring.Keyring, error) {
	kcfg := keyring.Config{
		ServiceName:                    cfg.ServiceName,
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		FileDir:                        cfg.FileDir,
		FilePasswordFunc:               keyring.FixedStringPrompt(cfg.Password),
	}
	if cfg.FileDir != "" {
		kcfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(kcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return ring, nil
}

// KeyringStore stores entries as items of an OS keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore creates a new KeyringStore.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (k *KeyringStore) Get(_ context.Context, key keystoreDomain.Key) ([]byte, error) {
	item, err := k.ring.Get(string(key))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, keystoreDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrapf(err, "failed to get keyring item %q", key)
	}
	return item.Data, nil
}

func (k *KeyringStore) Set(_ context.Context, key keystoreDomain.Key, value []byte) error {
	err := k.ring.Set(keyring.Item{
		Key:   string(key),
		Data:  append([]byte(nil), value...),
		Label: "dekbind " + string(key),
	})
	if err != nil {
		return apperrors.Wrapf(err, "failed to set keyring item %q", key)
	}
	return nil
}
