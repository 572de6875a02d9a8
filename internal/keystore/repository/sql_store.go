package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/l2obin/dekbind/internal/errors"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	selectQuery string
	upsertQuery string
}

var (
	postgresDialect = dialect{
		selectQuery: `SELECT entry_value FROM keystore_entries WHERE entry_key = $1`,
		upsertQuery: `INSERT INTO keystore_entries (entry_key, entry_value, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (entry_key) DO UPDATE
			  SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at`,
	}

	mysqlDialect = dialect{
		selectQuery: `SELECT entry_value FROM keystore_entries WHERE entry_key = ?`,
		upsertQuery: `INSERT INTO keystore_entries (entry_key, entry_value, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE entry_value = VALUES(entry_value), updated_at = VALUES(updated_at)`,
	}

	sqliteDialect = dialect{
		selectQuery: `SELECT entry_value FROM keystore_entries WHERE entry_key = ?`,
		upsertQuery: `INSERT INTO keystore_entries (entry_key, entry_value, updated_at)
			  VALUES (?, ?, ?)
			  ON CONFLICT (entry_key) DO UPDATE
			  SET entry_value = excluded.entry_value, updated_at = excluded.updated_at`,
	}
)

// sqlStore implements keystoreDomain.Store on the keystore_entries table.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func (s *sqlStore) Get(ctx context.Context, key keystoreDomain.Key) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.selectQuery, string(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keystoreDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrapf(err, "failed to get key store entry %q", key)
	}
	return value, nil
}

func (s *sqlStore) Set(ctx context.Context, key keystoreDomain.Key, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsertQuery, string(key), value, s.now().UTC())
	if err != nil {
		return apperrors.Wrapf(err, "failed to set key store entry %q", key)
	}
	return nil
}

// PostgreSQLStore stores entries in PostgreSQL.
type PostgreSQLStore struct{ sqlStore }

// NewPostgreSQLStore creates a new PostgreSQLStore.
func NewPostgreSQLStore(db *sql.DB) *PostgreSQLStore {
	return &PostgreSQLStore{sqlStore{db: db, dialect: postgresDialect, now: time.Now}}
}

// MySQLStore stores entries in MySQL.
type MySQLStore struct{ sqlStore }

// NewMySQLStore creates a new MySQLStore.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{sqlStore{db: db, dialect: mysqlDialect, now: time.Now}}
}

// SQLiteStore stores entries in a local SQLite file, the closest analogue of
// the browser's IndexedDB.
type SQLiteStore struct{ sqlStore }

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{sqlStore{db: db, dialect: sqliteDialect, now: time.Now}}
}
