package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/workflows"
)

// TemporalOrchestrator is the part of client.Client used to start workflows
//
//go:generate mockgen -source=orchestrator.go -destination=../../mocks/temporal_orchestrator.go -package=mocks -mock_names=TemporalOrchestrator=MockTemporalOrchestrator,RefreshStarter=MockRefreshStarter
type TemporalOrchestrator interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// RefreshStarter starts refresh workflows on the refresh worker's task queue
type RefreshStarter interface {
	// StartRefreshView starts RefreshViewWorkflow and returns its workflow id
	StartRefreshView(ctx context.Context, input workflows.RefreshViewInput) (string, error)

	// StartTenantRefresh starts RefreshTenantViewsWorkflow and returns its workflow id
	StartTenantRefresh(ctx context.Context, input workflows.RefreshTenantViewsInput) (string, error)

	// StartSweep starts RefreshAllTenantsWorkflow and returns its workflow id
	StartSweep(ctx context.Context, correlationID string) (string, error)
}

type refreshStarter struct {
	orchestrator TemporalOrchestrator
	worker       workflows.WorkerCore
	taskQueue    string
	timeout      time.Duration
}

// NewRefreshStarter creates a starter. worker only names the workflow functions; it is never invoked here.
func NewRefreshStarter(orchestrator TemporalOrchestrator, worker workflows.WorkerCore, taskQueue string, timeout time.Duration) RefreshStarter {
	return &refreshStarter{
		orchestrator: orchestrator,
		worker:       worker,
		taskQueue:    taskQueue,
		timeout:      timeout,
	}
}

func (s *refreshStarter) StartRefreshView(ctx context.Context, input workflows.RefreshViewInput) (string, error) {
	id := fmt.Sprintf("refresh-view-%s-%s-%s", input.ViewName, domain.TenantToken(input.TenantID), input.CorrelationID)
	return s.start(ctx, id, s.worker.RefreshViewWorkflow, input)
}

func (s *refreshStarter) StartTenantRefresh(ctx context.Context, input workflows.RefreshTenantViewsInput) (string, error) {
	return s.start(ctx, workflows.TenantRefreshWorkflowID(input.TenantID, input.CorrelationID), s.worker.RefreshTenantViewsWorkflow, input)
}

func (s *refreshStarter) StartSweep(ctx context.Context, correlationID string) (string, error) {
	return s.start(ctx, workflows.SweepWorkflowID(correlationID), s.worker.RefreshAllTenantsWorkflow, correlationID)
}

func (s *refreshStarter) start(ctx context.Context, id string, wf interface{}, arg interface{}) (string, error) {
	options := client.StartWorkflowOptions{
		ID:                       id,
		TaskQueue:                s.taskQueue,
		WorkflowExecutionTimeout: s.timeout,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}

	run, err := s.orchestrator.ExecuteWorkflow(ctx, options, wf, arg)
	if err != nil {
		return "", fmt.Errorf("failed to start workflow %s: %w", id, err)
	}
	return run.GetID(), nil
}
