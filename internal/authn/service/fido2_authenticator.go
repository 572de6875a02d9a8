//go:build fido2

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/keys-pub/go-libfido2"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	"github.com/l2obin/dekbind/internal/errors"
)

// FIDO2Config configures a FIDO2Authenticator.
type FIDO2Config struct {
	// DevicePath selects a device; empty picks the first one found.
	DevicePath string
	PIN        string
	// Salt is hashed to the 32-byte hmac-secret salt.
	Salt string
}

// FIDO2Authenticator talks CTAP2 to a USB/NFC security key through libfido2.
// The device is opened per call because libfido2 handles are not safe to share.
type FIDO2Authenticator struct {
	cfg  FIDO2Config
	salt [sha256.Size]byte
	rpID string
	mu   sync.Mutex
}

// NewFIDO2Authenticator creates a FIDO2Authenticator. Assertions are scoped to rpID.
func NewFIDO2Authenticator(cfg FIDO2Config, rpID string) (Authenticator, error) {
	if cfg.Salt == "" {
		cfg.Salt = DefaultSoftHMACSalt
	}
	return &FIDO2Authenticator{cfg: cfg, salt: sha256.Sum256([]byte(cfg.Salt)), rpID: rpID}, nil
}

func (f *FIDO2Authenticator) device() (*libfido2.Device, error) {
	path := f.cfg.DevicePath
	if path == "" {
		locs, err := libfido2.DeviceLocations()
		if err != nil {
			return nil, fmt.Errorf("failed to list fido2 devices: %w", err)
		}
		if len(locs) == 0 {
			return nil, errors.Wrap(errors.ErrUnavailable, "no fido2 device found")
		}
		path = locs[0].Path
	}
	return libfido2.NewDevice(path)
}

func clientDataHash() ([]byte, error) {
	challenge := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, challenge); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrRandomSourceUnavailable, err)
	}
	sum := sha256.Sum256(challenge)
	return sum[:], nil
}

func uvOption(uv authnDomain.UserVerification) libfido2.OptionValue {
	switch uv {
	case authnDomain.UserVerificationRequired:
		return libfido2.True
	case authnDomain.UserVerificationDiscouraged:
		return libfido2.False
	default:
		return libfido2.Default
	}
}

// Create makes a credential with the hmac-secret extension enabled.
func (f *FIDO2Authenticator) Create(
	ctx context.Context,
	params *authnDomain.CreationParams,
) (authnDomain.CredentialID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(authnDomain.ErrUserCancelled, err.Error())
	}

	alg, err := supportedAlgorithm(params.Algorithms)
	if err != nil {
		return nil, err
	}
	credType := libfido2.ES256
	if alg == authnDomain.RS256 {
		credType = libfido2.RS256
	}

	device, err := f.device()
	if err != nil {
		return nil, err
	}
	cdh, err := clientDataHash()
	if err != nil {
		return nil, err
	}

	attest, err := device.MakeCredential(
		cdh,
		libfido2.RelyingParty{ID: params.RelyingPartyID, Name: params.RelyingPartyName},
		libfido2.User{ID: params.UserID, Name: params.UserName, DisplayName: params.DisplayName},
		credType,
		f.cfg.PIN,
		&libfido2.MakeCredentialOpts{
			Extensions: []libfido2.Extension{libfido2.HMACSecretExtension},
			UV:         uvOption(params.UserVerification),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("fido2 make credential: %w", err)
	}
	return authnDomain.CredentialID(attest.CredentialID), nil
}

// GetAssertion requests an assertion, with the hmac-secret extension when asked.
func (f *FIDO2Authenticator) GetAssertion(
	ctx context.Context,
	credentialID authnDomain.CredentialID,
	requestSecret bool,
) (*authnDomain.AssertionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(authnDomain.ErrUserCancelled, err.Error())
	}

	device, err := f.device()
	if err != nil {
		return nil, err
	}
	cdh, err := clientDataHash()
	if err != nil {
		return nil, err
	}

	opts := &libfido2.AssertionOpts{UV: libfido2.True}
	if requestSecret {
		opts.Extensions = []libfido2.Extension{libfido2.HMACSecretExtension}
		opts.HMACSalt = append([]byte(nil), f.salt[:]...)
	}

	assertion, err := device.Assertion(f.rpID, cdh, [][]byte{credentialID}, f.cfg.PIN, opts)
	if err != nil {
		if errors.Is(err, libfido2.ErrNoCredentials) {
			return nil, authnDomain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("%w: %v", authnDomain.ErrAssertionFailed, err)
	}

	return &authnDomain.AssertionResult{
		CredentialID: credentialID,
		HMACSecret:   assertion.HMACSecret,
	}, nil
}
