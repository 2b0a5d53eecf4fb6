package refresh

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/lockkey"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/registry"
	"github.com/attribution-io/ledger-core/internal/store"
	"github.com/attribution-io/ledger-core/internal/types"
)

// recordTimeout bounds how long recorders may take once the refresh itself is over
const recordTimeout = 5 * time.Second

// Executor refreshes registered views with at most one refresh in flight per (view, tenant scope)
//
//go:generate mockgen -source=executor.go -destination=../mocks/refresh_executor.go -package=mocks -mock_names=Executor=MockRefreshExecutor
type Executor interface {
	// RefreshOne refreshes a single view. A view that is not registered, or a tenant-scoped view without a
	// tenant, is rejected with an error before any lock is attempted. Every other outcome, including
	// FAILED, is returned as a result; use RefreshResult.Err to turn a failure into an error.
	// Tenant-agnostic views ignore tenantID.
	RefreshOne(ctx context.Context, viewName string, tenantID *uuid.UUID, correlationID string) (domain.RefreshResult, error)

	// RefreshAll refreshes every registered view in dependency order, one result per view.
	// A failed view does not stop the batch.
	RefreshAll(ctx context.Context, tenantID uuid.UUID, correlationID string) ([]domain.RefreshResult, error)

	// RefreshTenantScoped refreshes only the tenant-scoped views in dependency order, for sweeps that
	// refresh tenant-agnostic views once with RefreshGlobal instead of once per tenant
	RefreshTenantScoped(ctx context.Context, tenantID uuid.UUID, correlationID string) ([]domain.RefreshResult, error)

	// RefreshGlobal refreshes every tenant-agnostic view in dependency order
	RefreshGlobal(ctx context.Context, correlationID string) ([]domain.RefreshResult, error)

	// Staleness reports how old each view's data is for a tenant, or for the global scope when tenantID is nil
	Staleness(ctx context.Context, tenantID *uuid.UUID) ([]StalenessReport, error)
}

type executor struct {
	registry registry.ViewRegistry
	store    store.Store
	recorder Recorder
	clock    adapter.Clock
}

// NewExecutor creates an executor over an already validated registry.
// recorder may be nil when results only need to be logged.
func NewExecutor(reg registry.ViewRegistry, st store.Store, recorder Recorder, clock adapter.Clock) Executor {
	if recorder == nil {
		recorder = NewMultiRecorder()
	}
	return &executor{
		registry: reg,
		store:    st,
		recorder: recorder,
		clock:    clock,
	}
}

// RefreshOne refreshes a single view
func (e *executor) RefreshOne(ctx context.Context, viewName string, tenantID *uuid.UUID, correlationID string) (domain.RefreshResult, error) {
	view, ok := e.registry.Get(viewName)
	if !ok {
		return domain.RefreshResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownView, viewName)
	}

	return e.refresh(ctx, view, tenantID, correlationID)
}

// RefreshAll refreshes every registered view for a tenant in dependency order
func (e *executor) RefreshAll(ctx context.Context, tenantID uuid.UUID, correlationID string) ([]domain.RefreshResult, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: refresh all needs a tenant", domain.ErrTenantRequired)
	}

	order := e.registry.TopologicalOrder()
	results := make([]domain.RefreshResult, 0, len(order))
	for _, view := range order {
		result, err := e.refresh(ctx, view, &tenantID, correlationID)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	logBatch(ctx, "Tenant views refreshed", results, zap.String("tenant_id", tenantID.String()))
	return results, nil
}

// RefreshTenantScoped refreshes the tenant-scoped views for a tenant in dependency order
func (e *executor) RefreshTenantScoped(ctx context.Context, tenantID uuid.UUID, correlationID string) ([]domain.RefreshResult, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant refresh needs a tenant", domain.ErrTenantRequired)
	}

	results, err := e.refreshWhere(ctx, &tenantID, correlationID, func(v *registry.View) bool { return v.TenantScoped })
	if err != nil {
		return results, err
	}

	logBatch(ctx, "Tenant-scoped views refreshed", results, zap.String("tenant_id", tenantID.String()))
	return results, nil
}

// RefreshGlobal refreshes every tenant-agnostic view in dependency order
func (e *executor) RefreshGlobal(ctx context.Context, correlationID string) ([]domain.RefreshResult, error) {
	results, err := e.refreshWhere(ctx, nil, correlationID, func(v *registry.View) bool { return !v.TenantScoped })
	if err != nil {
		return results, err
	}

	logBatch(ctx, "Global views refreshed", results)
	return results, nil
}

// refreshWhere refreshes the views matching keep in dependency order
func (e *executor) refreshWhere(ctx context.Context, tenantID *uuid.UUID, correlationID string, keep func(*registry.View) bool) ([]domain.RefreshResult, error) {
	var results []domain.RefreshResult
	for _, view := range e.registry.TopologicalOrder() {
		if !keep(view) {
			continue
		}
		result, err := e.refresh(ctx, view, tenantID, correlationID)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// refresh runs the locking protocol for one view:
//  1. derive the lock key from the view name and tenant token
//  2. try the transaction-scoped advisory lock without waiting
//  3. skip when it is held, otherwise run the body in the same transaction
//
// The lock goes away with the transaction, whether it commits or rolls back.
func (e *executor) refresh(ctx context.Context, view *registry.View, tenantID *uuid.UUID, correlationID string) (domain.RefreshResult, error) {
	scope := tenantID
	if !view.TenantScoped {
		scope = nil
	} else if scope == nil || *scope == uuid.Nil {
		return domain.RefreshResult{}, fmt.Errorf("%w: view %s is tenant-scoped", domain.ErrTenantRequired, view.Name)
	}

	key := lockkey.ForView(view.Name, scope)
	body := view.Body()

	startedAt := e.clock.Now()
	acquired, err := e.store.TryWithAdvisoryXactLock(ctx, key, func(tx *gorm.DB) error {
		return runBody(ctx, body, tx, scope)
	})
	elapsed := e.clock.Since(startedAt)

	result := domain.RefreshResult{
		ViewName:      view.Name,
		TenantID:      scope,
		CorrelationID: correlationID,
		StartedAt:     startedAt.UTC(),
		DurationMS:    elapsed.Milliseconds(),
	}

	switch {
	case err != nil:
		c := classifyFailure(ctx, err)
		result.Outcome = domain.OutcomeFailed
		result.ErrorType = types.StringPtr(c.Type)
		result.ErrorMessage = types.StringPtr(c.Message)
		result.ErrorDetail = c.Detail
	case !acquired:
		result.Outcome = domain.OutcomeSkippedLockHeld
	default:
		result.Outcome = domain.OutcomeSuccess
	}

	e.emit(ctx, result, key)
	return result, nil
}

// runBody executes a refresh body, turning a panic into an error so that the transaction rolls back
func runBody(ctx context.Context, body registry.RefreshFunc, tx *gorm.DB, tenantID *uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return body(ctx, tx, tenantID)
}

// classifyFailure prefers the caller's cancellation over whatever error the driver surfaced for it
func classifyFailure(ctx context.Context, err error) Classification {
	c := Classify(err)
	if c.Type == ErrorTypeInvariantViolation || c.Type == ErrorTypePanic {
		return c
	}

	switch ctx.Err() {
	case context.DeadlineExceeded:
		c.Type = ErrorTypeDeadlineExceeded
	case context.Canceled:
		c.Type = ErrorTypeCanceled
	}
	return c
}

// emit logs the result and hands it to the recorder. Recorder failures are logged only;
// they never change the outcome of a refresh that already happened.
func (e *executor) emit(ctx context.Context, result domain.RefreshResult, key lockkey.Key) {
	fields := []zap.Field{
		zap.String("view_name", result.ViewName),
		zap.String("tenant_scope", result.TenantScope()),
		zap.String("correlation_id", result.CorrelationID),
		zap.String("outcome", string(result.Outcome)),
		zap.Time("started_at", result.StartedAt),
		zap.Int64("duration_ms", result.DurationMS),
		zap.String("lock_key", key.String()),
	}

	switch result.Outcome {
	case domain.OutcomeFailed:
		fields = append(fields,
			zap.String("error_type", types.SafeString(result.ErrorType)),
			zap.String("error_message", types.SafeString(result.ErrorMessage)),
		)
		logger.WarnCtx(ctx, "View refresh failed", fields...)
	case domain.OutcomeSkippedLockHeld:
		logger.InfoCtx(ctx, "View refresh skipped, lock held", fields...)
	default:
		logger.InfoCtx(ctx, "View refreshed", fields...)
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := e.recorder.Record(recordCtx, result); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record refresh result: %w", err),
			zap.String("view_name", result.ViewName),
			zap.String("tenant_scope", result.TenantScope()),
			zap.String("correlation_id", result.CorrelationID),
		)
	}
}

// logBatch logs the outcome counts of a batch refresh
func logBatch(ctx context.Context, msg string, results []domain.RefreshResult, fields ...zap.Field) {
	counts := map[domain.Outcome]int{}
	for _, r := range results {
		counts[r.Outcome]++
	}

	fields = append(fields,
		zap.Int("views", len(results)),
		zap.Int("succeeded", counts[domain.OutcomeSuccess]),
		zap.Int("skipped", counts[domain.OutcomeSkippedLockHeld]),
		zap.Int("failed", counts[domain.OutcomeFailed]),
	)
	logger.InfoCtx(ctx, msg, fields...)
}
