package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/bridge"
	"github.com/attribution-io/ledger-core/internal/config"
	"github.com/attribution-io/ledger-core/internal/logger"
	temporal "github.com/attribution-io/ledger-core/internal/providers/temporal"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/registry"
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
	cfg, err := config.LoadRefreshBridgeConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service":     "refresh-bridge",
			"environment": cfg.Environment,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Refresh Bridge")

	// The registry validates requests before any workflow is started
	viewRegistry, err := refresh.LoadRegistry(registry.NewCatalogLoader(adapter.NewFileSystem()), cfg.Refresh.CatalogPath)
	if err != nil {
		logger.Fatal("Failed to load view catalog", zap.Error(err), zap.String("path", cfg.Refresh.CatalogPath))
	}

	// Connect to Temporal (for starting refresh workflows remotely)
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// The worker core is only used for its workflow definitions; activities run in refresh-worker
	workerCore := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{
		RefreshTimeout:        cfg.Refresh.Timeout,
		TenantWorkflowTimeout: cfg.Refresh.TenantWorkflowTimeout,
	})
	starter := temporal.NewRefreshStarter(temporalClient, workerCore, cfg.Temporal.RefreshTaskQueue, cfg.Temporal.WorkflowTimeout)

	// Create bridge
	refreshBridge, err := bridge.NewBridge(
		bridge.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			ConsumerName:   cfg.NATS.ConsumerName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
			AckWaitTimeout: cfg.NATS.AckWait,
			MaxDeliver:     cfg.NATS.MaxDeliver,
			NakDelay:       cfg.NATS.NakDelay,
			WorkerPoolSize: cfg.Worker.WorkerPoolSize,
			EnsureStream:   cfg.NATS.EnsureStream,
		},
		adapter.NewNatsJetStream(),
		viewRegistry,
		starter,
		adapter.NewJSON(),
		adapter.NewClock(),
	)
	if err != nil {
		logger.Fatal("Failed to create refresh bridge", zap.Error(err))
	}
	defer refreshBridge.Close()
	logger.Info("Refresh bridge created", zap.String("stream", cfg.NATS.StreamName), zap.String("consumer", cfg.NATS.ConsumerName))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for bridge errors
	errCh := make(chan error, 1)

	// Start the bridge
	go func() {
		if err := refreshBridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error(err, zap.String("component", "bridge"))
	}
	cancel()

	logger.Info("Refresh Bridge stopped")
}
