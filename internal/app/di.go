// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authnService "github.com/l2obin/dekbind/internal/authn/service"
	authnUseCase "github.com/l2obin/dekbind/internal/authn/usecase"
	"github.com/l2obin/dekbind/internal/config"
	cryptoService "github.com/l2obin/dekbind/internal/crypto/service"
	cryptoUseCase "github.com/l2obin/dekbind/internal/crypto/usecase"
	"github.com/l2obin/dekbind/internal/database"
	dekHTTP "github.com/l2obin/dekbind/internal/dek/http"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
	"github.com/l2obin/dekbind/internal/http"
	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
	keystoreRepository "github.com/l2obin/dekbind/internal/keystore/repository"
	"github.com/l2obin/dekbind/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger   *slog.Logger
	db       *sql.DB
	keeper   cryptoService.Keeper
	keystore keystoreDomain.Store

	// Background work owned by the container, such as rate limiter cleanup.
	bgCtx    context.Context
	bgCancel context.CancelFunc

	// Crypto
	aeadManager cryptoService.AEADManager
	keyManager  cryptoService.KeyManager
	kmsService  cryptoService.KMSService
	kekDeriver  cryptoService.KekDeriver
	kekUseCase  cryptoUseCase.KekUseCase

	// Authenticator binding
	authenticator  authnService.Authenticator
	bindingUseCase authnUseCase.BindingUseCase

	// DEK lifecycle
	dekManager dekUseCase.DekManager
	dekHandler *dekHTTP.DekHandler

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	keystoreInit        sync.Once
	aeadManagerInit     sync.Once
	keyManagerInit      sync.Once
	kmsServiceInit      sync.Once
	kekDeriverInit      sync.Once
	kekUseCaseInit      sync.Once
	authenticatorInit   sync.Once
	bindingUseCaseInit  sync.Once
	dekManagerInit      sync.Once
	dekHandlerInit      sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once

	initErrors map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		bgCtx:      ctx,
		bgCancel:   cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection of the sql key store drivers.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// Keystore returns the key store selected by KEYSTORE_DRIVER, sealed with the
// KMS key when KEYSTORE_KMS_KEY_URI is set. The schema version is checked on
// first access.
func (c *Container) Keystore() (keystoreDomain.Store, error) {
	var err error
	c.keystoreInit.Do(func() {
		c.keystore, err = c.initKeystore()
		if err != nil {
			c.initErrors["keystore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keystore"]; exists {
		return nil, storedErr
	}
	return c.keystore, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the HTTP server instance with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	c.bgCancel()

	// Zeroize any exposed DEK
	if c.dekManager != nil {
		c.dekManager.Close()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.keeper != nil {
		if err := c.keeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	driver := c.config.DBDriver()
	if driver == "" {
		return nil, fmt.Errorf("key store driver %q is not sql-backed", c.config.KeystoreDriver)
	}

	db, err := database.Connect(database.Config{
		Driver:             driver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initKeystore creates the key store for the configured driver.
func (c *Container) initKeystore() (keystoreDomain.Store, error) {
	store, err := c.openBaseKeystore()
	if err != nil {
		return nil, err
	}

	if c.config.KeystoreKMSKeyURI != "" {
		keeper, err := c.KMSService().OpenKeeper(c.bgCtx, c.config.KeystoreKMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open keeper for key store: %w", err)
		}
		c.keeper = keeper
		store = keystoreRepository.NewSealedStore(store, keeper)
	}

	if err := keystoreDomain.EnsureSchemaVersion(c.bgCtx, store); err != nil {
		return nil, fmt.Errorf("failed to check key store schema version: %w", err)
	}

	c.Logger().Debug("key store ready",
		slog.String("driver", c.config.KeystoreDriver),
		slog.Bool("sealed", c.keeper != nil),
	)

	return store, nil
}

// openBaseKeystore selects the unsealed store implementation.
func (c *Container) openBaseKeystore() (keystoreDomain.Store, error) {
	switch c.config.KeystoreDriver {
	case config.KeystoreMemory:
		return keystoreRepository.NewMemoryStore(), nil
	case config.KeystoreKeyring:
		ring, err := keystoreRepository.OpenKeyring(keystoreRepository.KeyringConfig{
			ServiceName: c.config.KeyringServiceName,
			FileDir:     c.config.KeyringDir,
			Password:    c.config.KeyringPassword,
		})
		if err != nil {
			return nil, err
		}
		return keystoreRepository.NewKeyringStore(ring), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key store: %w", err)
	}

	switch c.config.KeystoreDriver {
	case config.KeystorePostgres:
		return keystoreRepository.NewPostgreSQLStore(db), nil
	case config.KeystoreMySQL:
		return keystoreRepository.NewMySQLStore(db), nil
	case config.KeystoreSQLite:
		return keystoreRepository.NewSQLiteStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported key store driver: %s", c.config.KeystoreDriver)
	}
}

// keystorePinger backs the readiness probe: the database when sql-backed,
// otherwise a read of the schema version.
func (c *Container) keystorePinger() (http.Pinger, error) {
	store, err := c.Keystore()
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		return c.db, nil
	}
	return http.PingerFunc(func(ctx context.Context) error {
		_, err := store.Get(ctx, keystoreDomain.KeySchemaVersion)
		return err
	}), nil
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates business metrics, or a no-op recorder when metrics are disabled.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	pinger, err := c.keystorePinger()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for http server: %w", err)
	}

	dekHandler, err := c.DekHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get dek handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(pinger, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.bgCtx, c.config, dekHandler, metricsProvider)

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider.Handler()), nil
}
