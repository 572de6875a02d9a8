package domain

import (
	"github.com/l2obin/dekbind/internal/errors"
)

// Key store error definitions.
var (
	// ErrKeyNotFound indicates the requested entry is absent.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrUnsupportedSchemaVersion indicates the store was written by an
	// incompatible layout version.
	ErrUnsupportedSchemaVersion = errors.Wrap(errors.ErrConflict, "unsupported key store schema version")
)
