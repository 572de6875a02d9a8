package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	"github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// DefaultSoftHMACSalt is the hmac-secret salt used when none is configured.
const DefaultSoftHMACSalt = "dekbind-hmac-secret"

const softCredentialIDSize = 32

// SoftAuthenticatorConfig configures a SoftAuthenticator.
type SoftAuthenticatorConfig struct {
	// HMACSecret enables the hmac-secret extension. When false, assertions
	// succeed without a secret, like a platform authenticator lacking it.
	HMACSecret bool
	// Salt is hashed to the 32-byte salt the extension is evaluated with.
	Salt string
	// Random is the source of credential ids and per-credential randoms.
	Random io.Reader
}

// SoftAuthenticator implements Authenticator in software. Each credential has
// a 32-byte random persisted in the key store; the hmac-secret output is
// HMAC-SHA256(credRandom, salt), which is what CTAP2 authenticators compute.
//
// It gives no hardware protection and exists for development, CI and hosts
// without a FIDO2 device.
type SoftAuthenticator struct {
	store      keystoreDomain.Store
	random     io.Reader
	hmacSecret bool
	salt       [sha256.Size]byte
}

// NewSoftAuthenticator creates a new SoftAuthenticator backed by store.
func NewSoftAuthenticator(store keystoreDomain.Store, cfg SoftAuthenticatorConfig) *SoftAuthenticator {
	if cfg.Salt == "" {
		cfg.Salt = DefaultSoftHMACSalt
	}
	if cfg.Random == nil {
		cfg.Random = rand.Reader
	}
	return &SoftAuthenticator{
		store:      store,
		random:     cfg.Random,
		hmacSecret: cfg.HMACSecret,
		salt:       sha256.Sum256([]byte(cfg.Salt)),
	}
}

// Create mints a credential id and its credRandom and persists them.
func (s *SoftAuthenticator) Create(
	ctx context.Context,
	params *authnDomain.CreationParams,
) (authnDomain.CredentialID, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(authnDomain.ErrUserCancelled, err.Error())
	}
	if _, err := supportedAlgorithm(params.Algorithms); err != nil {
		return nil, err
	}

	buf := make([]byte, softCredentialIDSize+cryptoDomain.KeySize)
	defer cryptoDomain.Zero(buf)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrRandomSourceUnavailable, err)
	}

	credentialID := authnDomain.CredentialID(append([]byte(nil), buf[:softCredentialIDSize]...))

	record := make([]byte, 0, cryptoDomain.KeySize+len(params.UserID))
	record = append(record, buf[softCredentialIDSize:]...)
	record = append(record, params.UserID...)
	defer cryptoDomain.Zero(record)

	if err := s.store.Set(ctx, credentialKey(credentialID), record); err != nil {
		return nil, errors.Wrap(err, "failed to persist soft credential")
	}
	return credentialID, nil
}

// GetAssertion loads the credential and evaluates the extension when requested.
func (s *SoftAuthenticator) GetAssertion(
	ctx context.Context,
	credentialID authnDomain.CredentialID,
	requestSecret bool,
) (*authnDomain.AssertionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(authnDomain.ErrUserCancelled, err.Error())
	}

	record, err := s.store.Get(ctx, credentialKey(credentialID))
	if err != nil {
		if errors.Is(err, keystoreDomain.ErrKeyNotFound) {
			return nil, authnDomain.ErrCredentialNotFound
		}
		return nil, errors.Wrap(err, "failed to load soft credential")
	}
	defer cryptoDomain.Zero(record)
	if len(record) < cryptoDomain.KeySize {
		return nil, errors.Wrap(authnDomain.ErrAssertionFailed, "corrupt soft credential")
	}

	result := &authnDomain.AssertionResult{
		CredentialID: credentialID,
		UserHandle:   append([]byte(nil), record[cryptoDomain.KeySize:]...),
	}
	if requestSecret && s.hmacSecret {
		mac := hmac.New(sha256.New, record[:cryptoDomain.KeySize])
		mac.Write(s.salt[:])
		result.HMACSecret = mac.Sum(nil)
	}
	return result, nil
}

func credentialKey(id authnDomain.CredentialID) keystoreDomain.Key {
	return keystoreDomain.Key("soft-authenticator/" + id.String())
}
