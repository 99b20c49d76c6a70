// Package server wires the GophDocs server: storage backends, domain
// services and the HTTP API, and runs it until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/config"
	"github.com/dmitrijs2005/gophdocs/internal/server/httpapi"
	"github.com/dmitrijs2005/gophdocs/internal/server/objectstore"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/server/services"
)

// newS3Store is a seam for tests.
var newS3Store = func(ctx context.Context, cfg objectstore.Config) (services.ObjectStore, error) {
	return objectstore.NewS3Store(ctx, cfg)
}

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	db     *sql.DB
	server *httpapi.Server
}

// NewApp opens the storage backends and builds the services. With the
// memory DSN no database is opened; with an empty bucket bytes stay in
// process.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logging.NewJSONLogger(out, level)

	app := &App{config: c, logger: logger}

	if c.InMemoryStorage() {
		logger.Warn(ctx, "Using in-memory repositories, data is lost on exit")
		app.repos = repomanager.NewInMemoryRepositoryManager()
	} else {
		db, err := repomanager.OpenPostgres(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.repos = repomanager.NewPostgresRepositoryManager(db)
	}

	if err := app.repos.RunMigrations(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	objects, err := app.objectStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	stats := services.NewStats(app.repos, c.StatsCacheSize, c.StatsCacheTTL, c.RecentWindow, logger)
	docs := services.NewDocuments(app.repos, objects, stats, logger)
	svc := httpapi.Services{
		Documents:   docs,
		Permissions: services.NewPermissions(app.repos, stats, logger),
		ShareLinks:  services.NewShareLinks(app.repos, objects, []byte(c.ShareLinkSecret), logger),
		Sections:    services.NewSections(app.repos, stats, c.RecentWindow, c.RecentCap, c.DefaultPageSize),
		Stats:       stats,
		Admin:       services.NewAdmin(app.repos, docs, stats, c.DefaultPageSize, logger),
		Folders:     services.NewFolders(app.repos, logger),
	}
	app.server = httpapi.NewServer(c.HTTPAddress, svc, app.repos, logger, c.JWTSecret, c.ShutdownTimeout)

	return app, nil
}

func (app *App) objectStore(ctx context.Context) (services.ObjectStore, error) {
	c := app.config
	if c.S3Bucket == "" {
		app.logger.Warn(ctx, "No S3 bucket configured, keeping document bytes in memory")
		return objectstore.NewMemoryStore(), nil
	}
	store, err := newS3Store(ctx, objectstore.Config{
		Region:     c.S3Region,
		Endpoint:   c.S3BaseEndpoint,
		AccessKey:  c.S3RootUser,
		SecretKey:  c.S3RootPassword,
		Bucket:     c.S3Bucket,
		PresignTTL: c.PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	return store, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	app.Close()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}

// Close releases the database connection, if any.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
		app.db = nil
	}
}
