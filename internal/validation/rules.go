// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	apperrors "github.com/l2obin/dekbind/internal/errors"
)

var (
	// hostnameRegex matches a lowercase DNS name such as "localhost" or "app.example.com".
	hostnameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// RelyingPartyID validates that a string is usable as a WebAuthn relying party id.
var RelyingPartyID = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= 253 && hostnameRegex.MatchString(s)
	},
	validation.NewError("validation_rp_id", "must be a lowercase host name"),
)

// WrappedDek validates that a string decodes to a blob long enough to hold
// a nonce and an authentication tag. Authenticity is only checked on unwrap.
var WrappedDek = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_wrapped_dek_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	if len(raw) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return validation.NewError("validation_wrapped_dek_length", "is too short to be a wrapped key")
	}
	return nil
})

// Base64 validates that a string decodes as standard base64. Empty strings
// pass so Required decides whether the field is mandatory.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
