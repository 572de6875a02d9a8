package dto

import (
	"time"

	authnDomain "github.com/l2obin/dekbind/internal/authn/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
)

// StatusResponse represents the envelope status in API responses.
type StatusResponse struct {
	CredentialPresent       bool       `json:"credential_present"`
	ClientIDPresent         bool       `json:"client_id_present"`
	HardwareSecretSupported *bool      `json:"hardware_secret_supported"`
	WrappedDekPresent       bool       `json:"wrapped_dek_present"`
	DekExposed              bool       `json:"dek_exposed"`
	ExposedUntil            *time.Time `json:"exposed_until,omitempty"`
}

// CredentialResponse carries the bound credential id, base64url without padding.
type CredentialResponse struct {
	CredentialID string `json:"credential_id"`
}

// ExposureResponse is returned when a DEK has been generated.
type ExposureResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// ExposedDekResponse carries the exposed DEK.
// SECURITY: Dek is key material and must only travel over a trusted channel.
type ExposedDekResponse struct {
	Dek       string    `json:"dek"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WrapResponse is returned by a successful wrap.
type WrapResponse struct {
	Wrapped   string `json:"wrapped"`
	KekSource string `json:"kek_source"`
}

// UnwrapResponse is returned by a successful unwrap. The DEK itself is read
// through GET /v1/dek while exposed.
type UnwrapResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	KekSource string    `json:"kek_source"`
}

// EncryptResponse carries a payload sealed under the exposed DEK, base64.
type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
}

// DecryptResponse carries the opened payload, base64.
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
}

// MapStatusToResponse converts a domain status to an API response.
func MapStatusToResponse(status *dekDomain.Status) StatusResponse {
	return StatusResponse{
		CredentialPresent:       status.CredentialPresent,
		ClientIDPresent:         status.ClientIDPresent,
		HardwareSecretSupported: status.HardwareSecretSupported,
		WrappedDekPresent:       status.WrappedDekPresent,
		DekExposed:              status.DekExposed,
		ExposedUntil:            status.ExposedUntil,
	}
}

// MapCredentialToResponse converts a credential id to an API response.
func MapCredentialToResponse(id authnDomain.CredentialID) CredentialResponse {
	return CredentialResponse{CredentialID: id.String()}
}

// MapWrapResultToResponse converts a wrap result to an API response.
func MapWrapResultToResponse(result *dekDomain.WrapResult) WrapResponse {
	return WrapResponse{
		Wrapped:   result.Wrapped.String(),
		KekSource: string(result.KekSource),
	}
}

// MapUnwrapResultToResponse converts an unwrap result to an API response.
func MapUnwrapResultToResponse(result *dekDomain.UnwrapResult) UnwrapResponse {
	return UnwrapResponse{
		ExpiresAt: result.ExpiresAt,
		KekSource: string(result.KekSource),
	}
}
