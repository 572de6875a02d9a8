//go:build !fido2

package service

import (
	"github.com/l2obin/dekbind/internal/errors"
)

// FIDO2Config configures a FIDO2Authenticator.
type FIDO2Config struct {
	DevicePath string
	PIN        string
	Salt       string
}

// ErrFIDO2Unsupported indicates the binary was built without the fido2 tag.
var ErrFIDO2Unsupported = errors.Wrap(errors.ErrUnavailable, "fido2 support not compiled in (build with -tags fido2)")

// NewFIDO2Authenticator always fails in builds without the fido2 tag.
func NewFIDO2Authenticator(_ FIDO2Config, _ string) (Authenticator, error) {
	return nil, ErrFIDO2Unsupported
}
