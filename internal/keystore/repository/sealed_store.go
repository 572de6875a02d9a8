package repository

import (
	"context"

	cryptoService "github.com/l2obin/dekbind/internal/crypto/service"
	apperrors "github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// SealedStore encrypts every value with a KMS keeper before handing it to the
// underlying store, so the credential id and client id (the fallback KEK
// inputs) are never readable from the backing store alone.
type SealedStore struct {
	next   keystoreDomain.Store
	keeper cryptoService.Keeper
}

// NewSealedStore creates a SealedStore around next.
func NewSealedStore(next keystoreDomain.Store, keeper cryptoService.Keeper) *SealedStore {
	return &SealedStore{next: next, keeper: keeper}
}

func (s *SealedStore) Get(ctx context.Context, key keystoreDomain.Key) ([]byte, error) {
	sealed, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	value, err := s.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open sealed entry %q", key)
	}
	return value, nil
}

func (s *SealedStore) Set(ctx context.Context, key keystoreDomain.Key, value []byte) error {
	sealed, err := s.keeper.Encrypt(ctx, value)
	if err != nil {
		return apperrors.Wrapf(err, "failed to seal entry %q", key)
	}
	return s.next.Set(ctx, key, sealed)
}

// Close releases the keeper.
func (s *SealedStore) Close() error {
	return s.keeper.Close()
}
