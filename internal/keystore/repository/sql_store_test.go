package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
	"github.com/l2obin/dekbind/internal/testutil"
)

func TestSQLStores_WithSQLMock(t *testing.T) {
	ctx := context.Background()

	constructors := map[string]func(db *sql.DB) keystoreDomain.Store{
		"postgresql": func(db *sql.DB) keystoreDomain.Store { return NewPostgreSQLStore(db) },
		"mysql":      func(db *sql.DB) keystoreDomain.Store { return NewMySQLStore(db) },
	}

	for name, newStore := range constructors {
		t.Run(name, func(t *testing.T) {
			t.Run("get existing entry", func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				mock.ExpectQuery("SELECT entry_value FROM keystore_entries (.+)").
					WithArgs("webauthn-cred-id").
					WillReturnRows(sqlmock.NewRows([]string{"entry_value"}).AddRow([]byte("cred")))

				value, err := newStore(db).Get(ctx, keystoreDomain.KeyCredentialID)
				require.NoError(t, err)
				assert.Equal(t, []byte("cred"), value)
				assert.NoError(t, mock.ExpectationsWereMet())
			})

			t.Run("get missing entry", func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				mock.ExpectQuery("SELECT entry_value FROM keystore_entries (.+)").
					WithArgs("wrapped-dek").
					WillReturnError(sql.ErrNoRows)

				_, err = newStore(db).Get(ctx, keystoreDomain.KeyWrappedDek)
				assert.ErrorIs(t, err, keystoreDomain.ErrKeyNotFound)
				assert.NoError(t, mock.ExpectationsWereMet())
			})

			t.Run("get driver error", func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				boom := errors.New("connection reset")
				mock.ExpectQuery("SELECT entry_value FROM keystore_entries (.+)").
					WithArgs("wrapped-dek").
					WillReturnError(boom)

				_, err = newStore(db).Get(ctx, keystoreDomain.KeyWrappedDek)
				assert.ErrorIs(t, err, boom)
				assert.NotErrorIs(t, err, keystoreDomain.ErrKeyNotFound)
				assert.Contains(t, err.Error(), "failed to get key store entry")
			})

			t.Run("set upserts", func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				mock.ExpectExec("INSERT INTO keystore_entries (.+)").
					WithArgs("wrapped-dek", []byte("blob"), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))

				require.NoError(t, newStore(db).Set(ctx, keystoreDomain.KeyWrappedDek, []byte("blob")))
				assert.NoError(t, mock.ExpectationsWereMet())
			})

			t.Run("set driver error", func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				boom := errors.New("read-only transaction")
				mock.ExpectExec("INSERT INTO keystore_entries (.+)").WillReturnError(boom)

				err = newStore(db).Set(ctx, keystoreDomain.KeyWrappedDek, []byte("blob"))
				assert.ErrorIs(t, err, boom)
			})
		})
	}
}

func TestSQLiteStore(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	store := NewSQLiteStore(db)

	_, err := store.Get(ctx, keystoreDomain.KeyClientID)
	assert.ErrorIs(t, err, keystoreDomain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, keystoreDomain.KeyClientID, []byte{1, 2, 3}))
	value, err := store.Get(ctx, keystoreDomain.KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, value)

	require.NoError(t, store.Set(ctx, keystoreDomain.KeyClientID, []byte{4}))
	value, err = store.Get(ctx, keystoreDomain.KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, value)

	require.NoError(t, keystoreDomain.EnsureSchemaVersion(ctx, store))
	version, err := store.Get(ctx, keystoreDomain.KeySchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, keystoreDomain.CurrentSchemaVersion, string(version))
}
