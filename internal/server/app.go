// Package server wires configuration, the metadata catalog, the blob store,
// the services and the HTTP server together, and runs them until a shutdown
// signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/s3"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
	"github.com/dmitrijs2005/filekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filekeeper/internal/server/rest"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// ErrStartup marks failures that keep the server from ever listening.
var ErrStartup = errors.New("startup failed")

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	store   core.Store
	metrics *metrics.Collector
	server  *rest.Server
}

// NewApp validates c and opens every dependency. On error everything opened
// so far is closed again.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}

	repos, err := repomanager.Open(ctx, c.DatabaseDSN, c.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("%w: db init error: %w", ErrStartup, err)
	}
	if err := repos.Setup(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("%w: db setup error: %w", ErrStartup, err)
	}

	store, err := blob.Open(ctx, blobOptions(c, repos))
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("%w: blob store init error: %w", ErrStartup, err)
	}

	m := metrics.NewCollector()
	us := services.NewUserService(repos.Users(), c.BcryptCost, logger)
	fs := services.NewFileService(repos.Files(), store, c.MaxUploadSize, logger, m)

	gin.SetMode(gin.ReleaseMode)
	srv, err := rest.NewServer(rest.Options{
		Address:         c.Addr(),
		APIPrefix:       c.APIPrefix,
		AllowedOrigins:  c.AllowedOrigins,
		ShutdownTimeout: c.ShutdownTimeout,
		Metrics:         m,
	}, logger, us, fs)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("%w: http server init error: %w", ErrStartup, err)
	}

	return &App{config: c, logger: logger, repos: repos, store: store, metrics: m, server: srv}, nil
}

func blobOptions(c *config.Config, repos repomanager.RepositoryManager) blob.Options {
	opts := blob.Options{
		Driver: core.Driver(c.BlobDriver),
		Root:   c.UploadDir,
		S3: s3.Config{
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			Endpoint:        c.S3BaseEndpoint,
			AccessKeyID:     c.S3RootUser,
			SecretAccessKey: c.S3RootPassword,
			PathStyle:       c.S3PathStyle,
		},
		DatabaseName: c.DatabaseName,
		GridFSPrefix: c.GridFSPrefix,
	}
	if mm, ok := repos.(*repomanager.MongoRepositoryManager); ok {
		opts.Mongo = mm.Session()
		opts.DatabaseName = mm.DBName()
	}
	return opts
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a shutdown signal arrives, then closes
// the catalog connection. A server that fails to listen or to shut down
// cleanly is reported as an error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"blob_driver", string(app.store.Driver()),
		"max_upload_size", app.config.MaxUploadSize)

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing catalog", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}
