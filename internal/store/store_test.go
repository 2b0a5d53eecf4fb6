package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/types"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestEvent creates a revenue event input
func buildTestEvent(tenantID uuid.UUID, eventID string, amount int64) CreateRevenueEventInput {
	return CreateRevenueEventInput{
		TenantID:      tenantID,
		EventID:       eventID,
		RevenueAmount: amount,
		Currency:      "USD",
		OccurredAt:    time.Now().UTC().Add(-time.Hour),
	}
}

// buildTestAllocation creates an allocation input
func buildTestAllocation(tenantID uuid.UUID, eventID, model, channel string, amount int64) AllocationInput {
	return AllocationInput{
		TenantID:        tenantID,
		EventID:         eventID,
		ModelVersion:    model,
		ChannelCode:     channel,
		AllocatedAmount: amount,
	}
}

func seedEvent(t *testing.T, store Store, tenantID uuid.UUID, eventID string, amount int64) {
	t.Helper()
	require.NoError(t, store.CreateRevenueEvents(context.Background(), []CreateRevenueEventInput{
		buildTestEvent(tenantID, eventID, amount),
	}))
}

func channelAmounts(t *testing.T, store Store, key domain.AllocationKey) map[string]int64 {
	t.Helper()
	rows, err := store.GetAllocations(context.Background(), key)
	require.NoError(t, err)
	amounts := make(map[string]int64, len(rows))
	for _, row := range rows {
		amounts[row.ChannelCode] = row.AllocatedAmount
	}
	return amounts
}

// =============================================================================
// Revenue events
// =============================================================================

func testRevenueEvents(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)

		event, err := store.GetRevenueEvent(ctx, tenant, "evt_1")
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, int64(100), event.RevenueAmount)
		assert.Equal(t, "USD", event.Currency)
	})

	t.Run("missing event returns nil", func(t *testing.T) {
		event, err := store.GetRevenueEvent(ctx, uuid.New(), "missing")
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("duplicate ingestion is idempotent", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)

		replay := buildTestEvent(tenant, "evt_1", 999)
		require.NoError(t, store.CreateRevenueEvents(ctx, []CreateRevenueEventInput{replay}))

		event, err := store.GetRevenueEvent(ctx, tenant, "evt_1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), event.RevenueAmount)
	})

	t.Run("default currency", func(t *testing.T) {
		tenant := uuid.New()
		input := buildTestEvent(tenant, "evt_1", 5)
		input.Currency = ""
		require.NoError(t, store.CreateRevenueEvents(ctx, []CreateRevenueEventInput{input}))

		event, err := store.GetRevenueEvent(ctx, tenant, "evt_1")
		require.NoError(t, err)
		assert.Equal(t, "USD", event.Currency)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tenant := uuid.New()
		assert.Error(t, store.CreateRevenueEvents(ctx, []CreateRevenueEventInput{buildTestEvent(uuid.Nil, "evt", 1)}))
		assert.Error(t, store.CreateRevenueEvents(ctx, []CreateRevenueEventInput{buildTestEvent(tenant, " ", 1)}))
		assert.Error(t, store.CreateRevenueEvents(ctx, []CreateRevenueEventInput{buildTestEvent(tenant, "evt", -1)}))
	})

	t.Run("list tenants", func(t *testing.T) {
		first, second := uuid.New(), uuid.New()
		seedEvent(t, store, first, "evt_1", 1)
		seedEvent(t, store, first, "evt_2", 1)
		seedEvent(t, store, second, "evt_1", 1)

		tenants, err := store.ListTenantIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, tenants, first)
		assert.Contains(t, tenants, second)

		count := 0
		for _, tenant := range tenants {
			if tenant == first {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

// =============================================================================
// Allocation invariant
// =============================================================================

func testAllocationInvariant(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("balanced allocations commit", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)

		summary, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 40),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Rows)
		assert.Equal(t, 1, summary.Keys)
		assert.Equal(t, 1, summary.Statements)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		sum, err := store.GetAllocationSum(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(100), sum.Allocated)
		assert.Equal(t, int64(2), sum.Rows)
		require.NotNil(t, sum.Revenue)
		assert.Equal(t, int64(0), sum.Drift())
	})

	t.Run("drift within tolerance commits", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)

		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 39),
		})
		require.NoError(t, err)
	})

	t.Run("re-running a balanced batch is idempotent", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 1000)
		batch := []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 500),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 500),
			buildTestAllocation(tenant, "evt_1", "v1", "email", 0),
		}
		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}

		_, err := store.UpsertAllocations(ctx, batch)
		require.NoError(t, err)
		first := channelAmounts(t, store, key)

		for i := 0; i < 2; i++ {
			summary, err := store.UpsertAllocations(ctx, batch)
			require.NoError(t, err)
			assert.Equal(t, 3, summary.Rows)
		}

		sum, err := store.GetAllocationSum(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), sum.Allocated)
		assert.Equal(t, int64(3), sum.Rows)
		assert.Equal(t, first, channelAmounts(t, store, key))
	})

	t.Run("drift beyond tolerance is rejected and prior state survives", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 40),
		})
		require.NoError(t, err)

		_, err = store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 30),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)

		var violation *domain.InvariantViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, tenant, violation.TenantID)
		assert.Equal(t, "evt_1", violation.EventID)
		assert.Equal(t, "v1", violation.ModelVersion)
		assert.Equal(t, int64(90), violation.Allocated)
		assert.Equal(t, int64(100), violation.Revenue)
		assert.Equal(t, int64(10), violation.Drift)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		assert.Equal(t, map[string]int64{"paid_search": 60, "organic": 40}, channelAmounts(t, store, key))
	})

	t.Run("one bad key aborts the whole write", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_good", 100)
		seedEvent(t, store, tenant, "evt_bad", 100)

		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_good", "v1", "paid_search", 100),
			buildTestAllocation(tenant, "evt_bad", "v1", "paid_search", 50),
		})
		require.Error(t, err)

		var violation *domain.InvariantViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, "evt_bad", violation.EventID)

		rows, err := store.GetAllocations(ctx, domain.AllocationKey{TenantID: tenant, EventID: "evt_good", ModelVersion: "v1"})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("model versions balance independently", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)

		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 100),
			buildTestAllocation(tenant, "evt_1", "v2", "paid_search", 70),
			buildTestAllocation(tenant, "evt_1", "v2", "email", 30),
		})
		require.NoError(t, err)

		_, err = store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v2", "email", 31),
		})
		require.NoError(t, err, "drift of 1 is tolerated")

		_, err = store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v2", "email", 40),
		})
		var violation *domain.InvariantViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, "v2", violation.ModelVersion)
	})

	t.Run("allocations for a missing event are rejected", func(t *testing.T) {
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(uuid.New(), "evt_missing", "v1", "paid_search", 10),
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvariantViolation)
	})

	t.Run("many keys in one statement", func(t *testing.T) {
		tenant := uuid.New()
		var events []CreateRevenueEventInput
		var inputs []AllocationInput
		for i := 0; i < 50; i++ {
			eventID := fmt.Sprintf("evt_%03d", i)
			events = append(events, buildTestEvent(tenant, eventID, 90))
			for _, channel := range []string{"paid_search", "organic", "email"} {
				inputs = append(inputs, buildTestAllocation(tenant, eventID, "v1", channel, 30))
			}
		}
		require.NoError(t, store.CreateRevenueEvents(ctx, events))

		summary, err := store.UpsertAllocations(ctx, inputs)
		require.NoError(t, err)
		assert.Equal(t, 150, summary.Rows)
		assert.Equal(t, 50, summary.Keys)
		assert.Equal(t, 1, summary.Statements)
	})

	t.Run("rejects malformed input before writing", func(t *testing.T) {
		tenant := uuid.New()
		cases := []AllocationInput{
			buildTestAllocation(uuid.Nil, "evt_1", "v1", "paid", 1),
			buildTestAllocation(tenant, "", "v1", "paid", 1),
			buildTestAllocation(tenant, "evt_1", "", "paid", 1),
			buildTestAllocation(tenant, "evt_1", "v1", "", 1),
		}
		for _, input := range cases {
			_, err := store.UpsertAllocations(ctx, []AllocationInput{input})
			assert.Error(t, err)
		}

		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid", 1),
			buildTestAllocation(tenant, "evt_1", "v1", "paid", 2),
		})
		assert.ErrorContains(t, err, "duplicate allocation")
	})

	t.Run("empty write is a no-op", func(t *testing.T) {
		summary, err := store.UpsertAllocations(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Rows)
	})
}

func testReplaceAllocations(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("replaces the channel set of a key", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 40),
		})
		require.NoError(t, err)

		summary, err := store.ReplaceAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "email", 50),
			buildTestAllocation(tenant, "evt_1", "v1", "social", 30),
			buildTestAllocation(tenant, "evt_1", "v1", "direct", 20),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Rows)
		assert.Equal(t, 2, summary.Statements)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		assert.Equal(t, map[string]int64{"email": 50, "social": 30, "direct": 20}, channelAmounts(t, store, key))
	})

	t.Run("unbalanced replacement keeps the old rows", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 100),
		})
		require.NoError(t, err)

		_, err = store.ReplaceAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "email", 80),
		})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		assert.Equal(t, map[string]int64{"paid_search": 100}, channelAmounts(t, store, key))
	})
}

func testDeleteAllocations(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("deleting a whole key is allowed", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 40),
		})
		require.NoError(t, err)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		deleted, err := store.DeleteAllocations(ctx, []domain.AllocationKey{key})
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})

	t.Run("deleting part of a key is validated", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 40),
		})
		require.NoError(t, err)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		_, err = store.DeleteAllocationChannels(ctx, key, []string{"organic"})
		var violation *domain.InvariantViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, int64(60), violation.Allocated)

		assert.Len(t, channelAmounts(t, store, key), 2)
	})

	t.Run("deleting a zero channel is allowed", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 100),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 0),
		})
		require.NoError(t, err)

		key := domain.AllocationKey{TenantID: tenant, EventID: "evt_1", ModelVersion: "v1"}
		deleted, err := store.DeleteAllocationChannels(ctx, key, []string{"organic"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}

func testEventDeletion(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("deleting an event orphans its allocations", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 60),
			buildTestAllocation(tenant, "evt_1", "v1", "organic", 40),
		})
		require.NoError(t, err)

		existed, err := store.DeleteRevenueEvent(ctx, tenant, "evt_1")
		require.NoError(t, err)
		assert.True(t, existed)

		orphans, err := store.GetOrphanedAllocations(ctx, tenant)
		require.NoError(t, err)
		require.Len(t, orphans, 2)
		for _, orphan := range orphans {
			assert.Nil(t, orphan.EventID)
		}

		touched, err := store.TouchAllocations(ctx, tenant, nil, "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), touched)
	})

	t.Run("deleting a missing event reports false", func(t *testing.T) {
		existed, err := store.DeleteRevenueEvent(ctx, uuid.New(), "missing")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("touching a balanced key passes validation", func(t *testing.T) {
		tenant := uuid.New()
		seedEvent(t, store, tenant, "evt_1", 100)
		_, err := store.UpsertAllocations(ctx, []AllocationInput{
			buildTestAllocation(tenant, "evt_1", "v1", "paid_search", 100),
		})
		require.NoError(t, err)

		touched, err := store.TouchAllocations(ctx, tenant, types.StringPtr("evt_1"), "v1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), touched)
	})
}

// =============================================================================
// Refresh bookkeeping
// =============================================================================

func testRefreshBookkeeping(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("records runs and keeps the last success", func(t *testing.T) {
		tenant := uuid.New()
		view := "rpt_test_" + tenant.String()[:8]
		correlation := "corr-" + tenant.String()

		successAt := time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond)
		require.NoError(t, store.RecordRefreshResult(ctx, domain.RefreshResult{
			ViewName:      view,
			TenantID:      &tenant,
			CorrelationID: correlation,
			Outcome:       domain.OutcomeSuccess,
			StartedAt:     successAt,
			DurationMS:    12,
		}))

		failedAt := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, store.RecordRefreshResult(ctx, domain.RefreshResult{
			ViewName:      view,
			TenantID:      &tenant,
			CorrelationID: correlation,
			Outcome:       domain.OutcomeFailed,
			StartedAt:     failedAt,
			DurationMS:    3,
			ErrorType:     types.StringPtr("postgres_42P01"),
			ErrorMessage:  types.StringPtr("relation does not exist"),
			ErrorDetail:   map[string]string{"sqlstate": "42P01"},
		}))

		states, err := store.GetViewRefreshStates(ctx, tenant.String())
		require.NoError(t, err)
		require.Len(t, states, 1)
		assert.Equal(t, string(domain.OutcomeFailed), states[0].LastOutcome)
		assert.WithinDuration(t, failedAt, states[0].LastAttemptAt, time.Millisecond)
		require.NotNil(t, states[0].LastSuccessAt)
		assert.WithinDuration(t, successAt, *states[0].LastSuccessAt, time.Millisecond)

		runs, err := store.GetRefreshRuns(ctx, RefreshRunFilter{CorrelationID: &correlation})
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, string(domain.OutcomeFailed), runs[0].Outcome)
		assert.JSONEq(t, `{"sqlstate":"42P01"}`, string(runs[0].ErrorDetail))
		assert.Equal(t, string(domain.OutcomeSuccess), runs[1].Outcome)
		assert.Nil(t, runs[1].ErrorType)

		failed := domain.OutcomeFailed
		runs, err = store.GetRefreshRuns(ctx, RefreshRunFilter{ViewName: &view, Outcome: &failed, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("global results use the global scope", func(t *testing.T) {
		view := "mv_test_" + uuid.NewString()[:8]
		require.NoError(t, store.RecordRefreshResult(ctx, domain.RefreshResult{
			ViewName:      view,
			CorrelationID: "corr-global",
			Outcome:       domain.OutcomeSkippedLockHeld,
			StartedAt:     time.Now().UTC(),
		}))

		states, err := store.GetViewRefreshStates(ctx, domain.GlobalTenantToken)
		require.NoError(t, err)

		var found bool
		for _, state := range states {
			if state.ViewName == view {
				found = true
				assert.Equal(t, string(domain.OutcomeSkippedLockHeld), state.LastOutcome)
				assert.Nil(t, state.LastSuccessAt)
			}
		}
		assert.True(t, found)
	})

	t.Run("rejects an unknown outcome", func(t *testing.T) {
		err := store.RecordRefreshResult(ctx, domain.RefreshResult{ViewName: "mv_x", Outcome: "PARTIAL"})
		assert.Error(t, err)
	})
}

// RunStoreTests runs all store tests against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"RevenueEvents", testRevenueEvents},
		{"AllocationInvariant", testAllocationInvariant},
		{"ReplaceAllocations", testReplaceAllocations},
		{"DeleteAllocations", testDeleteAllocations},
		{"EventDeletion", testEventDeletion},
		{"RefreshBookkeeping", testRefreshBookkeeping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
