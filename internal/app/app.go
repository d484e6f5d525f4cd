// Package app initializes and holds the long-lived services every
// sitescout command shares, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/api"
	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/database"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/hash/sha256"
	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/logging"
	memorypublisher "github.com/stordev/sitescout/internal/publisher/memory"
	gcppublisher "github.com/stordev/sitescout/internal/publisher/pubsub"
	"github.com/stordev/sitescout/internal/storage"
	"github.com/stordev/sitescout/internal/storage/postgres"
	"github.com/stordev/sitescout/internal/telemetry"
)

// App holds the shared services: config, logger, the pgx pool and its
// store bundle, the raw-payload archive, and the run event publisher.
// Built once per command invocation and closed by a cobra hook after the
// command returns.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	pool      *pgxpool.Pool
	stores    *postgres.Stores
	archive   etl.BlobStore
	publisher etl.Publisher

	tracerShutdown func(context.Context) error
	metricShutdown func(context.Context) error
}

// NewApp creates and initializes the container. It fails fast: a bad
// DSN, a missing bucket, or an unreachable Pub/Sub project surfaces at
// startup, not halfway through a load.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	app := &App{cfg: cfg, logger: logger}
	logger.Info("initializing application services",
		zap.String("service", cfg.Application.ServiceName),
		zap.String("version", cfg.Application.Version),
	)

	tp, mp, err := telemetry.InitTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}
	app.tracerShutdown = tp.Shutdown
	app.metricShutdown = mp.Shutdown

	if err := setupArchive(ctx, app); err != nil {
		return nil, err
	}
	if err := setupDatabase(ctx, app); err != nil {
		return nil, err
	}
	if err := setupPublisher(ctx, app); err != nil {
		return nil, err
	}

	logger.Info("application services initialized")
	return app, nil
}

func setupArchive(ctx context.Context, app *App) error {
	archive, err := storage.NewBlobStore(ctx, app.cfg.Storage)
	if err != nil {
		return fmt.Errorf("archive init failed: %w", err)
	}
	app.archive = archive
	if archive == nil {
		app.logger.Info("raw archive disabled; fetched payloads are not retained")
		return nil
	}
	app.logger.Info("raw archive initialized",
		zap.String("provider", app.cfg.Storage.Provider),
		zap.String("prefix", app.cfg.Storage.Prefix),
	)
	return nil
}

func setupDatabase(ctx context.Context, app *App) error {
	pool, err := database.Connect(ctx, app.cfg.Database)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	app.pool = pool
	app.stores = postgres.NewStores(pool)
	app.logger.Info("database pool initialized",
		zap.Int32("max_conns", app.cfg.Database.MaxConns))
	return nil
}

func setupPublisher(ctx context.Context, app *App) error {
	if app.cfg.PubSub.ProjectID == "" || app.cfg.PubSub.TopicName == "" {
		app.logger.Warn("no Pub/Sub topic configured, run events stay in memory")
		app.publisher = memorypublisher.New()
		return nil
	}
	pub, err := gcppublisher.NewFromConfig(ctx, app.cfg.PubSub)
	if err != nil {
		return fmt.Errorf("publisher init failed: %w", err)
	}
	app.publisher = pub
	app.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", app.cfg.PubSub.ProjectID),
		zap.String("topic", app.cfg.PubSub.TopicName),
	)
	return nil
}

// GetLogger returns the shared logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the loaded configuration.
func (a *App) GetConfig() *config.Config {
	return a.cfg
}

// GetStores returns the store bundle over the shared pool.
func (a *App) GetStores() *postgres.Stores {
	return a.stores
}

// Recorder opens a run ledger entry for one loader invocation, wired to
// the ledger store, the archive, and the run event publisher.
func (a *App) Recorder(ctx context.Context, source string) (*etl.Recorder, error) {
	return etl.Begin(ctx, etl.RecorderConfig{
		Source:    source,
		Store:     a.stores.Runs,
		Publisher: a.publisher,
		Archive:   a.archive,
		Hasher:    sha256.New(),
		IDs:       uuid.NewUUIDGenerator(),
		Clock:     clockwork.NewRealClock(),
		Logger:    a.logger.Named(source),
		Topic:     a.cfg.PubSub.TopicName,
		Prefix:    a.cfg.Storage.Prefix,
	})
}

// Migrate applies pending schema migrations on the shared pool.
func (a *App) Migrate(ctx context.Context) error {
	return postgres.Migrate(ctx, a.pool, a.logger)
}

// Serve runs the read API until the context is canceled or a signal
// arrives, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := api.NewServer(a.apiStores(), a.pool, a.logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	return nil
}

func (a *App) apiStores() api.Stores {
	return api.Stores{
		Candidates:  a.stores.Candidates,
		Parcels:     a.stores.Parcels,
		Counties:    a.stores.Counties,
		Saturations: a.stores.Saturation,
		Scores:      a.stores.Scores,
		Zips:        a.stores.Zips,
		Permits:     a.stores.Permits,
		Signals:     a.stores.Signals,
		Runs:        a.stores.Runs,
	}
}

// Close gracefully shuts down every service in the container.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.closeInfrastructure()
	a.closeObservability(ctx)
	a.logger.Info("shutdown complete")
}

func (a *App) closeInfrastructure() {
	if closer, ok := a.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("publisher close failed", zap.Error(err))
		}
	}
	if closer, ok := a.archive.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("archive close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *App) closeObservability(ctx context.Context) {
	if err := a.logger.Sync(); err != nil {
		a.logger.Warn("logger sync failed", zap.Error(err))
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.metricShutdown != nil {
		if err := a.metricShutdown(ctx); err != nil {
			a.logger.Warn("metric shutdown failed", zap.Error(err))
		}
	}
}
