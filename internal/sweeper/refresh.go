package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/ledger"
	"github.com/attribution-io/ledger-core/internal/logger"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/store"
)

// RefreshSweeperConfig holds configuration for the refresh sweeper
type RefreshSweeperConfig struct {
	Interval          time.Duration // Time to sleep between sweep cycles
	WorkerPoolSize    int           // Tenants refreshed concurrently
	VerifyInvariants  bool          // Check every tenant for allocation drift after its refresh
	ListRetryMaxTime  time.Duration // Total time spent retrying the tenant listing
	ListRetryInterval time.Duration // First retry interval of the tenant listing
}

// CycleSummary counts the outcomes of one sweep cycle
type CycleSummary struct {
	CorrelationID string
	Tenants       int
	Succeeded     int
	Skipped       int
	Failed        int
	Violations    int
}

func (c *CycleSummary) add(results []domain.RefreshResult) {
	for _, r := range results {
		switch r.Outcome {
		case domain.OutcomeSuccess:
			c.Succeeded++
		case domain.OutcomeSkippedLockHeld:
			c.Skipped++
		case domain.OutcomeFailed:
			c.Failed++
		}
	}
}

// RefreshSweeper refreshes every view for every tenant on an interval
type RefreshSweeper interface {
	Sweeper

	// RunOnce runs a single sweep cycle
	RunOnce(ctx context.Context) (*CycleSummary, error)
}

type refreshSweeper struct {
	config    RefreshSweeperConfig
	store     store.Store
	executor  refresh.Executor
	verifier  ledger.Verifier
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewRefreshSweeper creates a new refresh sweeper. verifier may be nil when VerifyInvariants is off.
func NewRefreshSweeper(
	config RefreshSweeperConfig,
	st store.Store,
	executor refresh.Executor,
	verifier ledger.Verifier,
	clock adapter.Clock,
) RefreshSweeper {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}
	if config.ListRetryMaxTime <= 0 {
		config.ListRetryMaxTime = 2 * time.Minute
	}
	if config.ListRetryInterval <= 0 {
		config.ListRetryInterval = time.Second
	}

	return &refreshSweeper{
		config:    config,
		store:     st,
		executor:  executor,
		verifier:  verifier,
		clock:     clock,
		pool:      pond.NewPool(config.WorkerPoolSize),
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *refreshSweeper) Name() string {
	return "refresh-sweeper"
}

// Start runs sweep cycles until the context is canceled or Stop is called
func (s *refreshSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		s.pool.StopAndWait()
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting refresh sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Bool("verify_invariants", s.config.VerifyInvariants),
	)

	for {
		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Refresh sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Refresh sweeper stop requested")
			return nil
		case <-s.clock.After(s.config.Interval):
		}
	}
}

// Stop signals the main loop and waits for the running cycle, bounded by ctx
func (s *refreshSweeper) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping refresh sweeper")
	s.stopOnce.Do(func() { close(s.stopChan) })

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Refresh sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Refresh sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunOnce refreshes the global views once, then every tenant's views through the worker pool.
// A failing tenant is logged and counted; only a failure to list tenants fails the cycle.
func (s *refreshSweeper) RunOnce(ctx context.Context) (*CycleSummary, error) {
	startTime := s.clock.Now()
	summary := &CycleSummary{CorrelationID: ulid.MustNewDefault(startTime).String()}

	logger.InfoCtx(ctx, "Starting sweep cycle", zap.String("correlation_id", summary.CorrelationID))

	globalResults, err := s.executor.RefreshGlobal(ctx, summary.CorrelationID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh global views: %w", err)
	}
	summary.add(globalResults)

	tenants, err := s.listTenantsWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	summary.Tenants = len(tenants)

	var mu sync.Mutex
	group := s.pool.NewGroup()
	for _, tenantID := range tenants {
		group.Submit(func() {
			results, violations := s.sweepTenant(ctx, tenantID, summary.CorrelationID)

			mu.Lock()
			defer mu.Unlock()
			summary.add(results)
			summary.Violations += violations
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("sweep cycle interrupted: %w", err)
	}

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.String("correlation_id", summary.CorrelationID),
		zap.Int("tenants", summary.Tenants),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("violations", summary.Violations),
		zap.Duration("duration", s.clock.Since(startTime)),
	)

	return summary, nil
}

// sweepTenant refreshes the tenant-scoped views of one tenant and optionally checks its allocations
func (s *refreshSweeper) sweepTenant(ctx context.Context, tenantID uuid.UUID, correlationID string) ([]domain.RefreshResult, int) {
	results, err := s.executor.RefreshTenantScoped(ctx, tenantID, correlationID)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to refresh tenant views: %w", err), zap.String("tenant_id", tenantID.String()))
	}

	if !s.config.VerifyInvariants || s.verifier == nil {
		return results, 0
	}

	violations, err := s.verifier.VerifyTenant(ctx, tenantID)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to verify tenant allocations: %w", err), zap.String("tenant_id", tenantID.String()))
		return results, 0
	}
	for i := range violations {
		logger.ErrorCtx(ctx, &violations[i],
			zap.String("tenant_id", tenantID.String()),
			zap.String("event_id", violations[i].EventID),
			zap.String("model_version", violations[i].ModelVersion),
			zap.Int64("drift", violations[i].Drift),
		)
	}
	return results, len(violations)
}

// listTenantsWithRetry lists tenants with exponential backoff, so that a database failover does not skip a cycle
func (s *refreshSweeper) listTenantsWithRetry(ctx context.Context) ([]uuid.UUID, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.ListRetryInterval
	b.MaxInterval = s.config.ListRetryMaxTime / 4
	b.MaxElapsedTime = s.config.ListRetryMaxTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	var tenants []uuid.UUID
	operation := func() error {
		var err error
		tenants, err = s.store.ListTenantIDs(ctx)
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Listing tenants failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return nil, fmt.Errorf("failed to list tenants after %d attempts: %w", attemptCount+1, err)
	}

	return tenants, nil
}
