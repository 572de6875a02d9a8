package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations creates the key store tables for the given database/sql
// driver name (postgres, mysql or sqlite3). Migrations are read from
// migrationsDir/{postgresql,mysql,sqlite3}. Returns nil if there is nothing
// to apply.
func RunMigrations(logger *slog.Logger, driver, connectionString, migrationsDir string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	subdir, databaseURL, err := migrationTarget(driver, connectionString)
	if err != nil {
		return err
	}

	sourceURL := "file://" + filepath.ToSlash(filepath.Join(migrationsDir, subdir))

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationTarget returns the migrations subdirectory and the golang-migrate
// database URL for a driver. MySQL DSNs and SQLite paths are accepted in the
// form database/sql takes them.
func migrationTarget(driver, connectionString string) (string, string, error) {
	switch driver {
	case "postgres":
		return "postgresql", connectionString, nil
	case "mysql":
		if !strings.HasPrefix(connectionString, "mysql://") {
			connectionString = "mysql://" + connectionString
		}
		return "mysql", connectionString, nil
	case "sqlite3":
		if !strings.HasPrefix(connectionString, "sqlite3://") {
			connectionString = "sqlite3://" + connectionString
		}
		return "sqlite3", connectionString, nil
	case "":
		return "", "", errors.New("key store driver is not sql-backed, nothing to migrate")
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
