package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/attribution-io/ledger-core/internal/domain"
)

// WorkerCore defines the workflows of the refresh worker
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockCoreWorker
type WorkerCore interface {
	// RefreshViewWorkflow refreshes a single view
	RefreshViewWorkflow(ctx workflow.Context, input RefreshViewInput) (*domain.RefreshResult, error)

	// RefreshTenantViewsWorkflow refreshes a tenant's views in dependency order
	RefreshTenantViewsWorkflow(ctx workflow.Context, input RefreshTenantViewsInput) ([]domain.RefreshResult, error)

	// RefreshAllTenantsWorkflow refreshes the global views once, then every tenant's views through child workflows
	RefreshAllTenantsWorkflow(ctx workflow.Context, correlationID string) (*SweepSummary, error)
}

type WorkerCoreConfig struct {
	// RefreshTimeout bounds a single refresh activity
	RefreshTimeout time.Duration
	// TenantWorkflowTimeout bounds each per-tenant child workflow of a sweep
	TenantWorkflowTimeout time.Duration
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	config   WorkerCoreConfig
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor, config WorkerCoreConfig) WorkerCore {
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = 10 * time.Minute
	}
	if config.TenantWorkflowTimeout <= 0 {
		config.TenantWorkflowTimeout = 30 * time.Minute
	}

	return &workerCore{
		executor: executor,
		config:   config,
	}
}
