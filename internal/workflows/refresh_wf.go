package workflows

import (
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/types"
)

// SweepSummary counts the outcomes of a sweep across every tenant
type SweepSummary struct {
	CorrelationID string   `json:"correlation_id"`
	Tenants       int      `json:"tenants"`
	Succeeded     int      `json:"succeeded"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	FailedTenants []string `json:"failed_tenants,omitempty"`
}

func (s *SweepSummary) add(results []domain.RefreshResult) {
	for _, r := range results {
		switch r.Outcome {
		case domain.OutcomeSuccess:
			s.Succeeded++
		case domain.OutcomeSkippedLockHeld:
			s.Skipped++
		case domain.OutcomeFailed:
			s.Failed++
		}
	}
}

// TenantRefreshWorkflowID names the per-tenant child workflow of a sweep
func TenantRefreshWorkflowID(tenantID uuid.UUID, correlationID string) string {
	return fmt.Sprintf("refresh-tenant-%s-%s", tenantID, correlationID)
}

// SweepWorkflowID names the RefreshAllTenantsWorkflow execution of a sweep
func SweepWorkflowID(correlationID string) string {
	return "refresh-sweep-" + correlationID
}

// refreshActivityOptions never retries a refresh: a skipped or failed refresh is reported, and the next trigger tries again
func (w *workerCore) refreshActivityOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.RefreshTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
}

// correlationIDOrWorkflowID returns the given id, or the workflow id when none was given
func correlationIDOrWorkflowID(ctx workflow.Context, id string) string {
	if id != "" {
		return id
	}
	return workflow.GetInfo(ctx).WorkflowExecution.ID
}

// RefreshViewWorkflow refreshes a single view
func (w *workerCore) RefreshViewWorkflow(ctx workflow.Context, input RefreshViewInput) (*domain.RefreshResult, error) {
	input.CorrelationID = correlationIDOrWorkflowID(ctx, input.CorrelationID)

	logger.InfoWf(ctx, "Refreshing view",
		zap.String("view_name", input.ViewName),
		zap.String("tenant_id", domain.TenantToken(input.TenantID)),
		zap.String("correlation_id", input.CorrelationID),
	)

	ctx = w.refreshActivityOptions(ctx)

	var result domain.RefreshResult
	if err := workflow.ExecuteActivity(ctx, w.executor.RefreshView, input).Get(ctx, &result); err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to refresh view"),
			zap.Error(err),
			zap.String("view_name", input.ViewName),
		)
		return nil, err
	}

	logger.InfoWf(ctx, "View refresh finished",
		zap.String("view_name", result.ViewName),
		zap.String("outcome", string(result.Outcome)),
		zap.String("error_type", types.SafeString(result.ErrorType)),
	)

	return &result, nil
}

// RefreshTenantViewsWorkflow refreshes a tenant's views in dependency order
func (w *workerCore) RefreshTenantViewsWorkflow(ctx workflow.Context, input RefreshTenantViewsInput) ([]domain.RefreshResult, error) {
	input.CorrelationID = correlationIDOrWorkflowID(ctx, input.CorrelationID)

	logger.InfoWf(ctx, "Refreshing tenant views",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("correlation_id", input.CorrelationID),
		zap.Bool("tenant_scoped_only", input.TenantScopedOnly),
	)

	ctx = w.refreshActivityOptions(ctx)

	var results []domain.RefreshResult
	if err := workflow.ExecuteActivity(ctx, w.executor.RefreshTenantViews, input).Get(ctx, &results); err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to refresh tenant views"),
			zap.Error(err),
			zap.String("tenant_id", input.TenantID.String()),
		)
		return nil, err
	}

	return results, nil
}

// RefreshAllTenantsWorkflow refreshes the global views once, then every tenant's views through child workflows.
// A failing tenant is counted and does not stop the sweep.
func (w *workerCore) RefreshAllTenantsWorkflow(ctx workflow.Context, correlationID string) (*SweepSummary, error) {
	correlationID = correlationIDOrWorkflowID(ctx, correlationID)
	summary := &SweepSummary{CorrelationID: correlationID}

	logger.InfoWf(ctx, "Starting refresh sweep", zap.String("correlation_id", correlationID))

	activityCtx := w.refreshActivityOptions(ctx)

	// Step 1: Refresh the tenant-agnostic views once for the whole sweep
	var globalResults []domain.RefreshResult
	if err := workflow.ExecuteActivity(activityCtx, w.executor.RefreshGlobalViews, correlationID).Get(ctx, &globalResults); err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to refresh global views"),
			zap.Error(err),
		)
		return nil, err
	}
	summary.add(globalResults)

	// Step 2: List tenants
	var tenants []uuid.UUID
	if err := workflow.ExecuteActivity(activityCtx, w.executor.ListTenants).Get(ctx, &tenants); err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to list tenants"),
			zap.Error(err),
		)
		return nil, err
	}
	summary.Tenants = len(tenants)

	// Step 3: Start a child workflow per tenant
	childWorkflowOptions := workflow.ChildWorkflowOptions{
		WorkflowExecutionTimeout: w.config.TenantWorkflowTimeout,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		ParentClosePolicy:        enums.PARENT_CLOSE_POLICY_REQUEST_CANCEL,
	}

	var childFutures []workflow.ChildWorkflowFuture
	for _, tenant := range tenants {
		input := RefreshTenantViewsInput{
			TenantID:         tenant,
			CorrelationID:    correlationID,
			TenantScopedOnly: true,
		}

		childWorkflowOptions.WorkflowID = TenantRefreshWorkflowID(tenant, correlationID)
		childCtx := workflow.WithChildOptions(ctx, childWorkflowOptions)
		childFutures = append(childFutures, workflow.ExecuteChildWorkflow(childCtx, w.RefreshTenantViewsWorkflow, input))
	}

	// Step 4: Wait for every tenant, counting failures instead of aborting
	for i, childFuture := range childFutures {
		var results []domain.RefreshResult
		if err := childFuture.Get(ctx, &results); err != nil {
			logger.WarnWf(ctx, "Tenant refresh workflow failed",
				zap.String("tenant_id", tenants[i].String()),
				zap.Error(err),
			)
			summary.FailedTenants = append(summary.FailedTenants, tenants[i].String())
			continue
		}
		summary.add(results)
	}

	logger.InfoWf(ctx, "Refresh sweep completed",
		zap.String("correlation_id", correlationID),
		zap.Int("tenants", summary.Tenants),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("failed_tenants", len(summary.FailedTenants)),
	)

	return summary, nil
}
