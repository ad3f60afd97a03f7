package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/imagex"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/mailx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/aussiebroadwan/accounts/pkg/storagex"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "accounts-service"
)

// Application encapsulates the accounts service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	tokens     *jwtx.TokenIssuer
	hasher     cryptox.PasswordHasher
	dispatcher mailx.Dispatcher
	storage    storagex.Storage
	avatarDir  string // set for local storage only

	// Services
	accountService      *service.AccountService
	avatarService       *service.AvatarService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	steps := []func(context.Context) error{
		app.initCrypto,
		app.initMail,
		app.initStorage,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = app.db.Close()
			return nil, err
		}
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase opens the configured credential store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, postgres.Config{
			DSN:             app.cfg.DatabaseURL,
			ApplicationName: serviceName,
		})
	default:
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCrypto sets up the password hasher and the session token issuer
func (app *Application) initCrypto(context.Context) error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	app.hasher, err = cryptox.NewPasswordHasher(app.cfg.PasswordHasher, app.cfg.BcryptCost, pepper)
	if err != nil {
		return err
	}

	secret := app.cfg.SecretKey
	if secret == "" {
		// Config validation only lets this through in dev.
		if secret, err = cryptox.GenerateToken(cryptox.TokenSize256); err != nil {
			return err
		}
		app.logger.Warn("SECRET_KEY not set, using an ephemeral signing secret; sessions end on restart")
	}

	app.tokens, err = jwtx.NewTokenIssuer(jwtx.TokenIssuerOptions{
		Secret: []byte(secret),
		Issuer: serviceName,
		TTL:    app.cfg.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	return nil
}

// initMail selects the verification mail transport
func (app *Application) initMail(context.Context) error {
	if app.cfg.MailTransport != "smtp" {
		app.dispatcher = mailx.LogDispatcher{Logger: app.logger, From: app.cfg.MailFrom}
		app.logger.Warn("mail transport is log, verification emails are not delivered")
		return nil
	}

	d, err := mailx.NewSMTPDispatcher(mailx.SMTPConfig{
		Host:     app.cfg.MailHost,
		Port:     app.cfg.MailPort,
		Username: app.cfg.MailUsername,
		Password: app.cfg.MailPassword,
		From:     app.cfg.MailFrom,
	})
	if err != nil {
		return err
	}
	app.dispatcher = d
	return nil
}

// initStorage prepares the upload spool and the avatar storage backend
func (app *Application) initStorage(ctx context.Context) error {
	if err := os.MkdirAll(app.cfg.TempDir, 0o750); err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}

	if app.cfg.AvatarStorage == "s3" {
		s3, err := storagex.NewS3(ctx, storagex.S3Config{
			Bucket:    app.cfg.S3Bucket,
			Region:    app.cfg.S3Region,
			Endpoint:  app.cfg.S3Endpoint,
			AccessKey: app.cfg.S3AccessKey,
			SecretKey: app.cfg.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		app.storage = s3
		return nil
	}

	local, err := storagex.NewLocal(app.cfg.PublicDir)
	if err != nil {
		return err
	}
	app.storage = local
	app.avatarDir = local.Dir()
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.accountService = &service.AccountService{
		Store:  app.db,
		Hasher: app.hasher,
		Tokens: app.tokens,
		Mailer: &service.VerificationMailer{
			BaseURL:    app.cfg.BaseURL,
			Dispatcher: app.dispatcher,
		},
	}

	app.avatarService = &service.AvatarService{
		Store:      app.db,
		Normalizer: imagex.AvatarResizer,
		Storage:    app.storage,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.cfg.TempDir,
		app.cfg.TempUploadMaxAge,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.AccountService = app.accountService
	router.AvatarService = app.avatarService
	router.TempDir = app.cfg.TempDir
	router.MaxUploadBytes = app.cfg.MaxUploadBytes
	router.AvatarDir = app.avatarDir
	router.AllowedOrigins = app.cfg.CORSAllowedOrigins
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
