package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	authnService "github.com/l2obin/dekbind/internal/authn/service"
	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	apperrors "github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// BindingConfig holds the relying party and user presented at credential creation.
type BindingConfig struct {
	RelyingPartyID   string
	RelyingPartyName string
	UserName         string
	DisplayName      string
}

type bindingUseCase struct {
	store         keystoreDomain.Store
	authenticator authnService.Authenticator
	clientIDs     ClientIDProvider
	cfg           BindingConfig
	logger        *slog.Logger
}

func (b *bindingUseCase) CredentialID(ctx context.Context) (authnDomain.CredentialID, bool, error) {
	id, err := b.store.Get(ctx, keystoreDomain.KeyCredentialID)
	if apperrors.Is(err, keystoreDomain.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return authnDomain.CredentialID(id), true, nil
}

func (b *bindingUseCase) EnsureCredential(ctx context.Context) (authnDomain.CredentialID, error) {
	id, ok, err := b.CredentialID(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		id, err = b.createCredential(ctx)
		if err != nil {
			return nil, err
		}
	}

	clientID, err := b.clientIDs.EnsureClientID(ctx)
	if err != nil {
		return nil, err
	}
	cryptoDomain.Zero(clientID)

	return id, nil
}

func (b *bindingUseCase) createCredential(ctx context.Context) (authnDomain.CredentialID, error) {
	// A v4 UUID is 16 random bytes, the user handle size the browser flow uses.
	userID := uuid.New()
	params := &authnDomain.CreationParams{
		RelyingPartyID:   b.cfg.RelyingPartyID,
		RelyingPartyName: b.cfg.RelyingPartyName,
		UserID:           userID[:],
		UserName:         b.cfg.UserName,
		DisplayName:      b.cfg.DisplayName,
		Algorithms:       []authnDomain.COSEAlgorithm{authnDomain.ES256, authnDomain.RS256},
		Attachment:       authnDomain.AttachmentPlatform,
		UserVerification: authnDomain.UserVerificationRequired,
		Attestation:      "none",
	}

	b.logger.Info("creating authenticator credential", slog.String("rp_id", params.RelyingPartyID))

	id, err := b.authenticator.Create(ctx, params)
	if err != nil {
		b.logger.Warn("credential creation refused", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", authnDomain.ErrCredentialCreation, err)
	}
	if len(id) == 0 {
		return nil, fmt.Errorf("%w: empty credential id", authnDomain.ErrCredentialCreation)
	}

	if err := b.store.Set(ctx, keystoreDomain.KeyCredentialID, id); err != nil {
		return nil, err
	}

	b.logger.Info("credential created", slog.String("credential_id", id.String()))
	return id, nil
}

func (b *bindingUseCase) TryGetBoundSecret(
	ctx context.Context,
	credentialID authnDomain.CredentialID,
) *authnDomain.BoundSecret {
	result, err := b.authenticator.GetAssertion(ctx, credentialID, true)
	if err != nil {
		b.logger.Warn("hmac-secret assertion failed",
			slog.String("credential_id", credentialID.String()),
			slog.Any("error", err),
		)
		return &authnDomain.BoundSecret{Outcome: authnDomain.AssertionFailed, Reason: err}
	}

	// libfido2 reports a missing extension as an empty, non-nil slice.
	if len(result.HMACSecret) == 0 {
		return &authnDomain.BoundSecret{Outcome: authnDomain.SecretUnsupported}
	}

	if len(result.HMACSecret) != cryptoDomain.KeySize {
		size := len(result.HMACSecret)
		cryptoDomain.Zero(result.HMACSecret)
		return &authnDomain.BoundSecret{
			Outcome: authnDomain.AssertionFailed,
			Reason:  fmt.Errorf("%w: %d bytes", authnDomain.ErrInvalidSecretSize, size),
		}
	}

	return &authnDomain.BoundSecret{Outcome: authnDomain.SecretPresent, Secret: result.HMACSecret}
}

// NewBindingUseCase creates a new BindingUseCase.
func NewBindingUseCase(
	store keystoreDomain.Store,
	authenticator authnService.Authenticator,
	clientIDs ClientIDProvider,
	cfg BindingConfig,
	logger *slog.Logger,
) BindingUseCase {
	return &bindingUseCase{
		store:         store,
		authenticator: authenticator,
		clientIDs:     clientIDs,
		cfg:           cfg,
		logger:        logger,
	}
}
