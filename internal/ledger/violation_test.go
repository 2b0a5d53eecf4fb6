package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attribution-io/ledger-core/internal/domain"
)

func TestAsViolation(t *testing.T) {
	t.Run("decodes trigger detail", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           SQLStateCheckViolation,
			ConstraintName: ConstraintName,
			Message:        "allocation sum drift",
			Detail: fmt.Sprintf(`{"tenant_id":"%s","event_id":"evt_1","model_version":"v1","allocated":90,"revenue":100,"drift":10}`,
				tenantA),
		}

		violation, ok := AsViolation(fmt.Errorf("failed to upsert allocations: %w", pgErr))
		require.True(t, ok)
		assert.Equal(t, tenantA, violation.TenantID)
		assert.Equal(t, "evt_1", violation.EventID)
		assert.Equal(t, "v1", violation.ModelVersion)
		assert.Equal(t, int64(90), violation.Allocated)
		assert.Equal(t, int64(100), violation.Revenue)
		assert.Equal(t, int64(10), violation.Drift)
	})

	t.Run("unreadable detail still classifies", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           SQLStateCheckViolation,
			ConstraintName: ConstraintName,
			Message:        "allocation sum drift for tenant t1 event evt_9 model_version v1: drift=4",
			Detail:         "not json",
		}
		violation, ok := AsViolation(pgErr)
		require.True(t, ok)
		require.NotNil(t, violation)
		assert.Equal(t, pgErr.Message, violation.Message)
		assert.Contains(t, violation.Error(), "evt_9")
		assert.Contains(t, violation.Error(), "drift=4")
		assert.ErrorIs(t, violation, domain.ErrInvariantViolation)
	})

	t.Run("other check constraints are not violations", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: SQLStateCheckViolation, ConstraintName: "revenue_events_revenue_amount_check"}
		_, ok := AsViolation(pgErr)
		assert.False(t, ok)
	})

	t.Run("other sqlstates are not violations", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: ConstraintName}
		_, ok := AsViolation(pgErr)
		assert.False(t, ok)
	})

	t.Run("already translated", func(t *testing.T) {
		original := &domain.InvariantViolationError{EventID: "evt_2"}
		violation, ok := AsViolation(fmt.Errorf("wrapped: %w", original))
		require.True(t, ok)
		assert.Same(t, original, violation)
	})

	t.Run("nil and plain errors", func(t *testing.T) {
		_, ok := AsViolation(nil)
		assert.False(t, ok)
		_, ok = AsViolation(errors.New("boom"))
		assert.False(t, ok)
	})
}

func TestTranslateError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: SQLStateCheckViolation, ConstraintName: ConstraintName, Detail: `{"event_id":"evt_1","drift":5}`}
	err := TranslateError(pgErr)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	plain := errors.New("connection reset")
	assert.Same(t, plain, TranslateError(plain))
	assert.NoError(t, TranslateError(nil))
}
