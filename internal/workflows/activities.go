package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/store"
)

// ErrorTypeInvalidRefreshRequest marks requests that can never succeed, so Temporal does not retry them
const ErrorTypeInvalidRefreshRequest = "InvalidRefreshRequest"

// RefreshViewInput requests one view refresh
type RefreshViewInput struct {
	ViewName      string     `json:"view_name"`
	TenantID      *uuid.UUID `json:"tenant_id"`
	CorrelationID string     `json:"correlation_id"`
}

// RefreshTenantViewsInput requests a dependency-ordered refresh of a tenant's views
type RefreshTenantViewsInput struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	CorrelationID string    `json:"correlation_id"`
	// TenantScopedOnly leaves tenant-agnostic views to a separate global refresh
	TenantScopedOnly bool `json:"tenant_scoped_only"`
}

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=activities.go -destination=../mocks/activities.go -package=mocks -mock_names=Executor=MockCoreExecutor
type Executor interface {
	// RefreshView refreshes one view
	RefreshView(ctx context.Context, input RefreshViewInput) (*domain.RefreshResult, error)

	// RefreshTenantViews refreshes a tenant's views in dependency order
	RefreshTenantViews(ctx context.Context, input RefreshTenantViewsInput) ([]domain.RefreshResult, error)

	// RefreshGlobalViews refreshes every tenant-agnostic view in dependency order
	RefreshGlobalViews(ctx context.Context, correlationID string) ([]domain.RefreshResult, error)

	// ListTenants returns every tenant with revenue events
	ListTenants(ctx context.Context) ([]uuid.UUID, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	refresher refresh.Executor
	store     store.Store
	activity  adapter.Activity
}

// NewExecutor creates a new executor instance
func NewExecutor(refresher refresh.Executor, st store.Store, activity adapter.Activity) Executor {
	return &executor{
		refresher: refresher,
		store:     st,
		activity:  activity,
	}
}

// RefreshView refreshes one view. A FAILED outcome is a successful activity: the result carries the failure.
func (e *executor) RefreshView(ctx context.Context, input RefreshViewInput) (*domain.RefreshResult, error) {
	correlationID := e.correlationID(ctx, input.CorrelationID)

	result, err := e.refresher.RefreshOne(ctx, input.ViewName, input.TenantID, correlationID)
	if err != nil {
		return nil, invalidRequest(err)
	}

	return &result, nil
}

// RefreshTenantViews refreshes a tenant's views in dependency order
func (e *executor) RefreshTenantViews(ctx context.Context, input RefreshTenantViewsInput) ([]domain.RefreshResult, error) {
	correlationID := e.correlationID(ctx, input.CorrelationID)

	var (
		results []domain.RefreshResult
		err     error
	)
	if input.TenantScopedOnly {
		results, err = e.refresher.RefreshTenantScoped(ctx, input.TenantID, correlationID)
	} else {
		results, err = e.refresher.RefreshAll(ctx, input.TenantID, correlationID)
	}
	if err != nil {
		return nil, invalidRequest(err)
	}

	return results, nil
}

// RefreshGlobalViews refreshes every tenant-agnostic view in dependency order
func (e *executor) RefreshGlobalViews(ctx context.Context, correlationID string) ([]domain.RefreshResult, error) {
	return e.refresher.RefreshGlobal(ctx, e.correlationID(ctx, correlationID))
}

// ListTenants returns every tenant with revenue events
func (e *executor) ListTenants(ctx context.Context) ([]uuid.UUID, error) {
	tenants, err := e.store.ListTenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// correlationID falls back to the workflow id so every result can be traced to its execution
func (e *executor) correlationID(ctx context.Context, correlationID string) string {
	if correlationID != "" {
		return correlationID
	}

	info := e.activity.GetInfo(ctx)
	logger.DebugCtx(ctx, "Using workflow id as correlation id", zap.String("workflow_id", info.WorkflowExecution.ID))
	return info.WorkflowExecution.ID
}

// invalidRequest wraps configuration errors so that Temporal never retries them
func invalidRequest(err error) error {
	if errors.Is(err, domain.ErrUnknownView) || errors.Is(err, domain.ErrTenantRequired) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrorTypeInvalidRefreshRequest, err)
	}
	return err
}
