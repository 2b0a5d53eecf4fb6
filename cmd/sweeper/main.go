package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/config"
	"github.com/attribution-io/ledger-core/internal/ledger"
	"github.com/attribution-io/ledger-core/internal/logger"
	natsprovider "github.com/attribution-io/ledger-core/internal/providers/jetstream"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/registry"
	"github.com/attribution-io/ledger-core/internal/store"
	"github.com/attribution-io/ledger-core/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	once       = flag.Bool("once", false, "Run a single sweep cycle and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service":     "sweeper",
			"environment": cfg.Environment,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Load the view registry
	viewRegistry, err := refresh.LoadRegistry(registry.NewCatalogLoader(adapter.NewFileSystem()), cfg.Refresh.CatalogPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load view catalog", zap.Error(err), zap.String("path", cfg.Refresh.CatalogPath))
	}

	// Connect to database
	db, err := store.Open(ctx, store.ConnectConfigFrom(&cfg.Database, cfg.Debug))
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	defer store.Close(db)
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store and adapters
	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	recorders := []refresh.Recorder{refresh.NewStoreRecorder(dataStore)}
	if cfg.Refresh.PublishResults {
		publisher, err := natsprovider.NewPublisher(ctx,
			natsprovider.Config{
				URL:             cfg.NATS.URL,
				StreamName:      cfg.NATS.StreamName,
				MaxReconnects:   cfg.NATS.MaxReconnects,
				ReconnectWait:   cfg.NATS.ReconnectWait,
				ConnectionName:  cfg.NATS.ConnectionName,
				EnsureStream:    cfg.NATS.EnsureStream,
				DuplicateWindow: cfg.NATS.DuplicateWindow,
			},
			adapter.NewNatsJetStream(),
			adapter.NewJSON(),
		)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer publisher.Close()
		recorders = append(recorders, refresh.NewPublisherRecorder(publisher))
	}

	refresher := refresh.NewExecutor(viewRegistry, dataStore, refresh.NewMultiRecorder(recorders...), clock)

	// Initialize refresh sweeper
	refreshSweeper := sweeper.NewRefreshSweeper(
		sweeper.RefreshSweeperConfig{
			Interval:         cfg.RefreshSweeper.Interval,
			WorkerPoolSize:   cfg.RefreshSweeper.Worker.WorkerPoolSize,
			VerifyInvariants: cfg.RefreshSweeper.VerifyInvariants,
			ListRetryMaxTime: cfg.RefreshSweeper.ListRetryMaxTime,
		},
		dataStore,
		refresher,
		ledger.NewVerifier(db),
		clock,
	)

	logger.InfoCtx(ctx, "Initialized refresh sweeper",
		zap.Duration("interval", cfg.RefreshSweeper.Interval),
		zap.Int("worker_pool_size", cfg.RefreshSweeper.Worker.WorkerPoolSize),
		zap.Bool("verify_invariants", cfg.RefreshSweeper.VerifyInvariants),
	)

	if *once {
		summary, err := refreshSweeper.RunOnce(ctx)
		if err != nil {
			logger.ErrorCtx(ctx, err)
			logger.Flush(2 * time.Second)
			os.Exit(1)
		}
		logger.InfoCtx(ctx, "Sweep finished",
			zap.String("correlation_id", summary.CorrelationID),
			zap.Int("failed", summary.Failed),
			zap.Int("violations", summary.Violations),
		)
		return
	}

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := refreshSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// A running cycle aborts its refresh transactions on cancel; give it time to roll back
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := refreshSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
