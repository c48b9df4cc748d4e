// Package server wires the diary server together: database and migrations,
// audio storage, the transcription client, the processing pipeline and its
// worker pool, the gRPC API and the metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/logging"
	"github.com/dmitrijs2005/voicediary/internal/server/audio"
	"github.com/dmitrijs2005/voicediary/internal/server/config"
	"github.com/dmitrijs2005/voicediary/internal/server/pipeline"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/voicediary/internal/server/services"
	"github.com/dmitrijs2005/voicediary/internal/server/transcription"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/voicediary/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *prometheus.Registry
	pool        *pipeline.Pool
	grpcServer  *gs.GRPCServer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	storage := audio.NewS3Storage(audio.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	transcriber := transcription.NewHTTPClient(c.TranscriptionURL, c.TranscriptionModel, c.TranscriptionTimeout, storage)

	p := pipeline.New(db, rm, transcriber, c.TranscriptionLanguage, logger,
		pipeline.NewLogObserver(logger), pipeline.NewMetricsObserver(registry))
	pool := pipeline.NewPool(p, rm.Entries(db), c.Workers, c.QueueSize, logger)

	admission := services.NewAdmissionService(db, rm, c)
	entries := services.NewEntryService(db, rm, admission, pool, storage, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		registry:    registry,
		pool:        pool,
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, entries, admission, c.SecretKey),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// metricsHandler serves /metrics from the app registry and /health, which
// pings the database.
func (app *App) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

func (app *App) startMetricsServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           app.metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "metrics server shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run migrates the database, resumes unfinished entries and serves until
// ctx is done or a component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.pool.Run(ctx)
	})
	g.Go(func() error {
		err := app.pool.Recover(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, pipeline.ErrPoolClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return app.grpcServer.Run(ctx)
	})
	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return app.startMetricsServer(ctx)
		})
	}

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
