// Package service provides authenticator backends: a software authenticator
// that emulates the hmac-secret extension and, with the fido2 build tag, a
// FIDO2 hardware authenticator.
package service

import (
	"context"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
)

// Authenticator is the opaque platform capability the envelope is bound to.
type Authenticator interface {
	// Create mints a new credential and returns its id.
	Create(ctx context.Context, params *authnDomain.CreationParams) (authnDomain.CredentialID, error)

	// GetAssertion asks the user to assert with credentialID. When
	// requestSecret is true the hmac-secret extension is requested; its output
	// is returned in AssertionResult.HMACSecret if the authenticator supports it.
	GetAssertion(
		ctx context.Context,
		credentialID authnDomain.CredentialID,
		requestSecret bool,
	) (*authnDomain.AssertionResult, error)
}

// supportedAlgorithm returns the first requested algorithm an authenticator
// can use, preferring the caller's order.
func supportedAlgorithm(algs []authnDomain.COSEAlgorithm) (authnDomain.COSEAlgorithm, error) {
	for _, alg := range algs {
		switch alg {
		case authnDomain.ES256, authnDomain.RS256:
			return alg, nil
		}
	}
	return 0, authnDomain.ErrUnsupportedAlgorithms
}
