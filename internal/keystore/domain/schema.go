package domain

import (
	"context"
	"fmt"

	"github.com/l2obin/dekbind/internal/errors"
)

// EnsureSchemaVersion writes CurrentSchemaVersion when the store has no
// version marker yet and fails with ErrUnsupportedSchemaVersion when it holds
// any other value.
func EnsureSchemaVersion(ctx context.Context, store Store) error {
	value, err := store.Get(ctx, KeySchemaVersion)
	if errors.Is(err, ErrKeyNotFound) {
		return store.Set(ctx, KeySchemaVersion, []byte(CurrentSchemaVersion))
	}
	if err != nil {
		return err
	}
	if string(value) != CurrentSchemaVersion {
		return fmt.Errorf("%w: found %q, want %q", ErrUnsupportedSchemaVersion, value, CurrentSchemaVersion)
	}
	return nil
}
