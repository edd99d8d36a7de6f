// Package server wires configuration, storage and services into a running
// HTTP application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/kalahboard/internal/dbx"
	"github.com/dmitrijs2005/kalahboard/internal/filex"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/auth"
	"github.com/dmitrijs2005/kalahboard/internal/server/config"
	"github.com/dmitrijs2005/kalahboard/internal/server/httpapi"
	"github.com/dmitrijs2005/kalahboard/internal/server/metrics"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kalahboard/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.HTTPServer
}

// OpenStore connects to PostgreSQL and applies pending migrations.
func OpenStore(ctx context.Context, c *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return db, rm, nil
}

// NewAuthService builds the credential flow from configuration.
func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config,
	logger logging.Logger, m *metrics.Metrics) (*services.AuthService, *auth.TokenService, error) {

	hasher := auth.NewBcryptHasher(c.BcryptCost)
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	as, err := services.NewAuthService(db, rm, hasher, tokens, logger, m)
	if err != nil {
		return nil, nil, err
	}
	return as, tokens, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if c.InsecureSecret() {
		logger.Warn(ctx, "using the default token secret, set -s or secret_key before deploying")
	}

	db, rm, err := OpenStore(ctx, c)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	as, tokens, err := NewAuthService(db, rm, c, logger, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store, uploadDir, err := newAvatarStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	staticDir, err := filex.EnsureDir(c.StaticDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	svc := httpapi.Services{
		Auth:        as,
		Sessions:    services.NewSessionGuard(db, rm, tokens, logger, m),
		Profiles:    services.NewProfileService(db, rm, logger),
		Leaderboard: services.NewLeaderboardService(db, rm, logger),
		Avatars:     services.NewAvatarService(db, rm, store, c.APIBaseURL, c.MaxAvatarSize, logger),
	}

	hs := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, svc, httpapi.Options{
		AllowedOrigins: c.AllowedOrigins,
		StaticDir:      staticDir,
		UploadDir:      uploadDir,
		MaxAvatarSize:  c.MaxAvatarSize,
		Metrics:        m,
	})

	return &App{config: c, logger: logger, db: db, httpServer: hs}, nil
}

// newAvatarStore picks the configured backend. The returned directory is
// non-empty only for local storage, which the HTTP layer then serves.
func newAvatarStore(ctx context.Context, c *config.Config) (services.AvatarStore, string, error) {
	if c.AvatarStorage == config.AvatarStorageS3 {
		store, err := services.NewS3AvatarStore(ctx, c)
		if err != nil {
			return nil, "", fmt.Errorf("s3 avatar store: %w", err)
		}
		return store, "", nil
	}

	dir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		return nil, "", fmt.Errorf("local avatar store: %w", err)
	}
	store, err := services.NewLocalAvatarStore(dir)
	if err != nil {
		return nil, "", fmt.Errorf("local avatar store: %w", err)
	}
	return store, dir, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, then shuts down and closes
// the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close failed", "error", err)
		}
	}()

	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
