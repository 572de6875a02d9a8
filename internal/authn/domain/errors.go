package domain

import (
	"github.com/l2obin/dekbind/internal/errors"
)

// Authenticator error definitions.
var (
	// ErrCredentialCreation indicates the authenticator refused or failed to
	// create a credential (cancelled, unsupported, insecure origin).
	ErrCredentialCreation = errors.Wrap(errors.ErrUnavailable, "credential creation failed")

	// ErrAssertionFailed indicates the authenticator could not produce an assertion.
	ErrAssertionFailed = errors.Wrap(errors.ErrUnavailable, "assertion failed")

	// ErrUserCancelled indicates the user dismissed the authenticator prompt.
	ErrUserCancelled = errors.Wrap(ErrAssertionFailed, "user cancelled")

	// ErrCredentialNotFound indicates the authenticator does not know the credential.
	ErrCredentialNotFound = errors.Wrap(ErrAssertionFailed, "credential not recognised by authenticator")

	// ErrInvalidSecretSize indicates the extension returned a secret that is not 32 bytes.
	ErrInvalidSecretSize = errors.Wrap(ErrAssertionFailed, "hmac-secret has invalid size")

	// ErrUnsupportedAlgorithms indicates none of the requested COSE algorithms is available.
	ErrUnsupportedAlgorithms = errors.Wrap(errors.ErrInvalidInput, "no supported credential algorithm requested")
)
