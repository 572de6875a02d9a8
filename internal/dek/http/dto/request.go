// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/l2obin/dekbind/internal/validation"
)

// WrapRequest contains the parameters for wrapping the exposed DEK.
// An empty body is accepted and means no fallback.
type WrapRequest struct {
	AllowFallback bool `json:"allow_fallback"`
}

// UnwrapRequest contains the parameters for unwrapping a DEK.
// When Wrapped is empty the persisted blob is used.
type UnwrapRequest struct {
	AllowFallback bool   `json:"allow_fallback"`
	Wrapped       string `json:"wrapped,omitempty"`
}

// Validate checks if the unwrap request is valid.
func (r *UnwrapRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Wrapped,
			customValidation.NoWhitespace,
			customValidation.WrappedDek,
		),
	)
}

// EncryptRequest carries base64 plaintext to seal under the exposed DEK.
type EncryptRequest struct {
	Plaintext string `json:"plaintext"`
}

// Validate checks if the encrypt request is valid.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.Base64,
		),
	)
}

// DecryptRequest carries a base64 payload sealed under the exposed DEK.
type DecryptRequest struct {
	Ciphertext string `json:"ciphertext"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ciphertext,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.Base64,
		),
	)
}
