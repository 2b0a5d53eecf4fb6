package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/attribution-io/ledger-core/internal/adapter"
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/refresh"
	"github.com/attribution-io/ledger-core/internal/registry"
	"github.com/attribution-io/ledger-core/internal/store"
)

// cleanupTenant removes everything a committed test wrote for a tenant
func cleanupTenant(t *testing.T, db *gorm.DB, tenantID uuid.UUID, correlationID string) {
	t.Cleanup(func() {
		for _, stmt := range []string{
			"DELETE FROM allocations WHERE tenant_id = ?",
			"DELETE FROM revenue_events WHERE tenant_id = ?",
			"DELETE FROM rpt_tenant_channel_totals WHERE tenant_id = ?",
			"DELETE FROM rpt_tenant_model_summary WHERE tenant_id = ?",
		} {
			assert.NoError(t, db.Exec(stmt, tenantID).Error)
		}
		assert.NoError(t, db.Exec("DELETE FROM view_refresh_state WHERE tenant_scope = ?", tenantID.String()).Error)
		assert.NoError(t, db.Exec("DELETE FROM refresh_runs WHERE correlation_id = ?", correlationID).Error)
	})
}

func TestExecutor_DefaultViewsAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	db := store.SharedTestDB()
	require.NotNil(t, db)

	st := store.NewPGStore(db)
	reg, err := registry.New(refresh.DefaultRoutines(), registry.DefaultViews()...)
	require.NoError(t, err)
	executor := refresh.NewExecutor(reg, st, refresh.NewStoreRecorder(st), adapter.NewClock())

	tenant := uuid.New()
	correlationID := "corr-" + tenant.String()
	cleanupTenant(t, db, tenant, correlationID)

	require.NoError(t, st.CreateRevenueEvents(ctx, []store.CreateRevenueEventInput{
		{TenantID: tenant, EventID: "evt_1", RevenueAmount: 1000},
		{TenantID: tenant, EventID: "evt_2", RevenueAmount: 500},
	}))
	_, err = st.UpsertAllocations(ctx, []store.AllocationInput{
		{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1", ChannelCode: "paid_search", AllocatedAmount: 600},
		{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1", ChannelCode: "organic", AllocatedAmount: 400},
		{TenantID: tenant, EventID: "evt_2", ModelVersion: "v1", ChannelCode: "paid_search", AllocatedAmount: 500},
	})
	require.NoError(t, err)

	// evt_2's allocation survives as an orphan and drops out of the channel totals
	deleted, err := st.DeleteRevenueEvent(ctx, tenant, "evt_2")
	require.NoError(t, err)
	require.True(t, deleted)

	results, err := executor.RefreshAll(ctx, tenant, correlationID)
	require.NoError(t, err)

	var names []string
	for _, r := range results {
		names = append(names, r.ViewName)
		assert.Equal(t, domain.OutcomeSuccess, r.Outcome, "%s: %s", r.ViewName, r.Err())
	}
	assert.Equal(t, []string{
		"mv_channel_revenue",
		"mv_orphaned_allocations",
		"rpt_tenant_channel_totals",
		"rpt_tenant_model_summary",
	}, names)

	t.Run("materialized views", func(t *testing.T) {
		var revenue []struct {
			ChannelCode     string
			AllocatedAmount int64
			EventCount      int64
		}
		require.NoError(t, db.Raw(`SELECT channel_code, allocated_amount, event_count FROM mv_channel_revenue
WHERE tenant_id = ? AND model_version = 'v1' ORDER BY channel_code`, tenant).Scan(&revenue).Error)
		require.Len(t, revenue, 2)
		assert.Equal(t, "organic", revenue[0].ChannelCode)
		assert.Equal(t, int64(400), revenue[0].AllocatedAmount)
		assert.Equal(t, "paid_search", revenue[1].ChannelCode)
		assert.Equal(t, int64(600), revenue[1].AllocatedAmount)
		assert.Equal(t, int64(1), revenue[1].EventCount)

		var orphaned struct {
			AllocationCount int64
			AllocatedAmount int64
		}
		require.NoError(t, db.Raw(`SELECT allocation_count, allocated_amount FROM mv_orphaned_allocations
WHERE tenant_id = ? AND model_version = 'v1'`, tenant).Scan(&orphaned).Error)
		assert.Equal(t, int64(1), orphaned.AllocationCount)
		assert.Equal(t, int64(500), orphaned.AllocatedAmount)
	})

	t.Run("tenant channel totals", func(t *testing.T) {
		var totals []struct {
			ChannelCode     string
			AllocatedAmount int64
		}
		require.NoError(t, db.Raw(`SELECT channel_code, allocated_amount FROM rpt_tenant_channel_totals
WHERE tenant_id = ? ORDER BY channel_code`, tenant).Scan(&totals).Error)
		require.Len(t, totals, 2)
		assert.Equal(t, int64(400), totals[0].AllocatedAmount)
		assert.Equal(t, int64(600), totals[1].AllocatedAmount)
	})

	t.Run("tenant model summary", func(t *testing.T) {
		var summary struct {
			ChannelCount    int64
			AllocatedAmount int64
			TopChannelCode  string
		}
		require.NoError(t, db.Raw(`SELECT channel_count, allocated_amount, top_channel_code FROM rpt_tenant_model_summary
WHERE tenant_id = ? AND model_version = 'v1'`, tenant).Scan(&summary).Error)
		assert.Equal(t, int64(2), summary.ChannelCount)
		assert.Equal(t, int64(1000), summary.AllocatedAmount)
		assert.Equal(t, "paid_search", summary.TopChannelCode)
	})

	t.Run("results are recorded", func(t *testing.T) {
		runs, err := st.GetRefreshRuns(ctx, store.RefreshRunFilter{CorrelationID: &correlationID})
		require.NoError(t, err)
		assert.Len(t, runs, 4)

		reports, err := executor.Staleness(ctx, &tenant)
		require.NoError(t, err)
		require.Len(t, reports, 4)
		for _, report := range reports {
			require.NotNil(t, report.LastOutcome, report.ViewName)
			assert.Equal(t, domain.OutcomeSuccess, *report.LastOutcome, report.ViewName)
			assert.False(t, report.Stale, report.ViewName)
		}
	})
}

// blockingRegistry registers one tenant-scoped view whose body signals started and then waits for release,
// but only for blockTenant
func blockingRegistry(t *testing.T, viewName string, blockTenant uuid.UUID, started chan<- struct{}, release <-chan struct{}) registry.ViewRegistry {
	routine := func(ctx context.Context, tx *gorm.DB, tenantID *uuid.UUID) error {
		if err := tx.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
			return err
		}
		if tenantID != nil && *tenantID == blockTenant {
			started <- struct{}{}
			<-release
		}
		return nil
	}

	reg, err := registry.New(registry.Routines{"blocking": routine}, registry.View{
		Name:         viewName,
		Kind:         registry.ViewKindComposite,
		TenantScoped: true,
		Routine:      "blocking",
	})
	require.NoError(t, err)
	return reg
}

func TestExecutor_SingleFlightAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	db := store.SharedTestDB()
	require.NotNil(t, db)

	tenant := uuid.New()
	other := uuid.New()
	viewName := "mv_single_flight_" + tenant.String()[:8]

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	reg := blockingRegistry(t, viewName, tenant, started, release)
	executor := refresh.NewExecutor(reg, store.NewPGStore(db), nil, adapter.NewClock())

	type outcome struct {
		result domain.RefreshResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := executor.RefreshOne(ctx, viewName, &tenant, "corr-first")
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-started:
	case <-time.After(30 * time.Second):
		t.Fatal("first refresh never started")
	}

	// Same view and tenant while the first refresh holds the lock
	second, err := executor.RefreshOne(ctx, viewName, &tenant, "corr-second")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkippedLockHeld, second.Outcome)

	// Same view for another tenant proceeds in parallel
	parallel, err := executor.RefreshOne(ctx, viewName, &other, "corr-other")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, parallel.Outcome)

	close(release)
	var first outcome
	select {
	case first = <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("first refresh never finished")
	}
	require.NoError(t, first.err)
	assert.Equal(t, domain.OutcomeSuccess, first.result.Outcome)

	// The lock went away with the first transaction; release is closed so the body no longer waits
	again, err := executor.RefreshOne(ctx, viewName, &tenant, "corr-again")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, again.Outcome)
}
