package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/config"
	"github.com/attribution-io/ledger-core/internal/logger"
	natsprovider "github.com/attribution-io/ledger-core/internal/providers/jetstream"
	temporal "github.com/attribution-io/ledger-core/internal/providers/temporal"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/registry"
	"github.com/attribution-io/ledger-core/internal/store"
	"github.com/attribution-io/ledger-core/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadRefreshWorkerConfig(*configFile, *envPath)
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
			"service":     "refresh-worker",
			"environment": cfg.Environment,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Refresh Worker")

	// Load the view registry
	viewRegistry, err := refresh.LoadRegistry(registry.NewCatalogLoader(adapter.NewFileSystem()), cfg.Refresh.CatalogPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load view catalog", zap.Error(err), zap.String("path", cfg.Refresh.CatalogPath))
	}
	logger.InfoCtx(ctx, "Loaded view registry", zap.Strings("views", viewRegistry.Names()))

	// Connect to database
	db, err := store.Open(ctx, store.ConnectConfigFrom(&cfg.Database, cfg.Debug))
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	defer store.Close(db)
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Bool("read_replica", cfg.Database.ReadHost != ""),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Every result is recorded in the database; publishing to NATS is optional
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
		logger.InfoCtx(ctx, "Publishing refresh results", zap.String("stream", cfg.NATS.StreamName))
	}

	// Initialize refresh executor and activities
	refresher := refresh.NewExecutor(viewRegistry, dataStore, refresh.NewMultiRecorder(recorders...), adapter.NewClock())
	executor := workflows.NewExecutor(refresher, dataStore, adapter.NewActivity())

	// Connect to Temporal
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// Create Temporal worker
	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.RefreshTaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors:                       []interceptor.WorkerInterceptor{temporal.NewSentryActivityInterceptor()},
		})
	logger.InfoCtx(ctx, "Created Temporal worker", zap.String("taskQueue", cfg.Temporal.RefreshTaskQueue))

	// Create worker core instance
	workerCore := workflows.NewWorkerCore(executor, workflows.WorkerCoreConfig{
		RefreshTimeout:        cfg.Refresh.Timeout,
		TenantWorkflowTimeout: cfg.Refresh.TenantWorkflowTimeout,
	})

	// Register workflows
	temporalWorker.RegisterWorkflow(workerCore.RefreshViewWorkflow)
	temporalWorker.RegisterWorkflow(workerCore.RefreshTenantViewsWorkflow)
	temporalWorker.RegisterWorkflow(workerCore.RefreshAllTenantsWorkflow)
	logger.InfoCtx(ctx, "Registered workflows")

	// Register activities
	temporalWorker.RegisterActivity(executor.RefreshView)
	temporalWorker.RegisterActivity(executor.RefreshTenantViews)
	temporalWorker.RegisterActivity(executor.RefreshGlobalViews)
	temporalWorker.RegisterActivity(executor.ListTenants)
	logger.InfoCtx(ctx, "Registered activities")

	// Start worker
	if err := temporalWorker.Start(); err != nil {
		logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Worker started and listening for tasks")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))

	// Stop waits for running activities, so in-flight refreshes commit or roll back before exit
	temporalWorker.Stop()
	logger.InfoCtx(ctx, "Worker stopped")
}
