// Package domain defines the authenticator-facing types: credential ids,
// creation parameters, assertion results and the outcome of a bound-secret probe.
package domain

import (
	"encoding/base64"
)

// CredentialID is the opaque, authenticator-issued credential identifier.
type CredentialID []byte

// String returns the unpadded base64url form used by WebAuthn and in logs.
func (c CredentialID) String() string {
	return base64.RawURLEncoding.EncodeToString(c)
}

// COSEAlgorithm is a COSE algorithm identifier.
type COSEAlgorithm int

const (
	// ES256 is ECDSA P-256 with SHA-256.
	ES256 COSEAlgorithm = -7
	// RS256 is RSASSA-PKCS1-v1_5 with SHA-256.
	RS256 COSEAlgorithm = -257
)

// Attachment restricts which authenticators may create the credential.
type Attachment string

const (
	AttachmentPlatform      Attachment = "platform"
	AttachmentCrossPlatform Attachment = "cross-platform"
)

// UserVerification is the requested user verification policy.
type UserVerification string

const (
	UserVerificationRequired    UserVerification = "required"
	UserVerificationPreferred   UserVerification = "preferred"
	UserVerificationDiscouraged UserVerification = "discouraged"
)

// CreationParams carries everything the authenticator needs to mint a credential.
type CreationParams struct {
	RelyingPartyID   string
	RelyingPartyName string
	UserID           []byte
	UserName         string
	DisplayName      string
	Algorithms       []COSEAlgorithm
	Attachment       Attachment
	UserVerification UserVerification
	// Attestation is always "none"; no attestation statement is verified.
	Attestation string
}

// AssertionResult is what a successful assertion returns. HMACSecret is nil
// when the authenticator does not support the extension.
type AssertionResult struct {
	CredentialID CredentialID
	UserHandle   []byte
	HMACSecret   []byte
}
