// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/l2obin/dekbind/internal/validation"
)

// Key store drivers.
const (
	KeystoreMemory   = "memory"
	KeystoreSQLite   = "sqlite"
	KeystorePostgres = "postgres"
	KeystoreMySQL    = "mysql"
	KeystoreKeyring  = "keyring"
)

// Authenticator backends.
const (
	AuthenticatorSoft  = "soft"
	AuthenticatorFIDO2 = "fido2"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the servers.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// KeystoreDriver selects where credential ids, client ids and wrapped DEKs live.
	KeystoreDriver string
	// DBConnectionString is the connection string for the sql key store drivers.
	// For sqlite it is a file path or a "file:" URI.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// KeyringServiceName namespaces entries in the OS keyring.
	KeyringServiceName string
	// KeyringDir forces the encrypted-file keyring backend in this directory.
	KeyringDir string
	// KeyringPassword unlocks the encrypted-file keyring backend.
	KeyringPassword string

	// KeystoreKMSKeyURI, when set, seals every key store value with this KMS key
	// (e.g., "base64key://...", "hashivault://key", "awskms:///alias/dekbind").
	KeystoreKMSKeyURI string

	// DekExposureWindow bounds how long a plaintext DEK stays in memory.
	DekExposureWindow time.Duration
	// DekAlgorithm is the AEAD of the in-process DEK handle.
	DekAlgorithm string
	// FallbackKDFSalt is the HKDF salt of the fallback KEK.
	FallbackKDFSalt string

	// AuthenticatorBackend selects the authenticator implementation.
	AuthenticatorBackend string
	// AuthenticatorHMACSecret toggles hmac-secret support of the soft authenticator.
	AuthenticatorHMACSecret bool
	// AuthenticatorHMACSalt is the salt the hmac-secret extension is evaluated with.
	AuthenticatorHMACSalt string
	// FIDO2DevicePath selects a FIDO2 device; empty picks the first one.
	FIDO2DevicePath string
	// FIDO2PIN is the FIDO2 device PIN.
	FIDO2PIN string

	// RelyingPartyID scopes the credential.
	RelyingPartyID string
	// RelyingPartyName is shown by the authenticator on creation.
	RelyingPartyName string
	// CredentialUserName is the account name stored with the credential.
	CredentialUserName string
	// CredentialDisplayName is the display name stored with the credential.
	CredentialDisplayName string

	// RateLimitEnabled indicates whether endpoints that prompt the authenticator are rate limited.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of prompting requests allowed per second per IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for prompting requests per IP.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Key store
		KeystoreDriver:       env.GetString("KEYSTORE_DRIVER", KeystoreSQLite),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "dekbind.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 5),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 2),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME_MINUTES", 5, time.Minute),

		KeyringServiceName: env.GetString("KEYRING_SERVICE_NAME", "dekbind"),
		KeyringDir:         env.GetString("KEYRING_DIR", ""),
		KeyringPassword:    env.GetString("KEYRING_PASSWORD", ""),

		KeystoreKMSKeyURI: env.GetString("KEYSTORE_KMS_KEY_URI", ""),

		// DEK lifecycle
		DekExposureWindow: env.GetDuration("DEK_EXPOSURE_WINDOW_SECONDS", 30, time.Second),
		DekAlgorithm:      env.GetString("DEK_ALGORITHM", "aes-gcm"),
		FallbackKDFSalt:   env.GetString("FALLBACK_KDF_SALT", "webauthn-demo-salt"),

		// Authenticator
		AuthenticatorBackend:    env.GetString("AUTHENTICATOR_BACKEND", AuthenticatorSoft),
		AuthenticatorHMACSecret: env.GetBool("AUTHENTICATOR_HMAC_SECRET", true),
		AuthenticatorHMACSalt:   env.GetString("AUTHENTICATOR_HMAC_SALT", ""),
		FIDO2DevicePath:         env.GetString("FIDO2_DEVICE_PATH", ""),
		FIDO2PIN:                env.GetString("FIDO2_PIN", ""),

		// Credential
		RelyingPartyID:        env.GetString("RELYING_PARTY_ID", "localhost"),
		RelyingPartyName:      env.GetString("RELYING_PARTY_NAME", "Local Demo"),
		CredentialUserName:    env.GetString("CREDENTIAL_USER_NAME", "local-user"),
		CredentialDisplayName: env.GetString("CREDENTIAL_DISPLAY_NAME", "Local User"),

		// Rate Limiting (IP-based, prompting endpoints)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 1.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 5),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "dekbind"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate reports configuration values that would fail later at wiring time.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.KeystoreDriver,
			validation.Required,
			validation.In(KeystoreMemory, KeystoreSQLite, KeystorePostgres, KeystoreMySQL, KeystoreKeyring),
		),
		validation.Field(&c.DBConnectionString, validation.When(
			c.KeystoreDriver == KeystoreSQLite ||
				c.KeystoreDriver == KeystorePostgres ||
				c.KeystoreDriver == KeystoreMySQL,
			validation.Required,
		)),
		validation.Field(&c.KeyringServiceName, validation.When(
			c.KeystoreDriver == KeystoreKeyring,
			validation.Required,
			customValidation.NotBlank,
		)),
		validation.Field(&c.DekExposureWindow, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.DekAlgorithm, validation.In("aes-gcm", "chacha20-poly1305")),
		validation.Field(&c.FallbackKDFSalt, validation.Required),
		validation.Field(&c.AuthenticatorBackend,
			validation.Required,
			validation.In(AuthenticatorSoft, AuthenticatorFIDO2),
		),
		validation.Field(&c.RelyingPartyID, validation.Required, customValidation.RelyingPartyID),
		validation.Field(&c.RelyingPartyName, customValidation.NotBlank),
		validation.Field(&c.CredentialUserName, customValidation.NotBlank),
		validation.Field(&c.MetricsPort, validation.When(c.MetricsEnabled, validation.Min(1), validation.Max(65535))),
	)
}

// DBDriver returns the database/sql driver name of the key store driver, or
// an empty string for drivers that are not sql-backed.
func (c *Config) DBDriver() string {
	switch c.KeystoreDriver {
	case KeystoreSQLite:
		return "sqlite3"
	case KeystorePostgres:
		return "postgres"
	case KeystoreMySQL:
		return "mysql"
	default:
		return ""
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
