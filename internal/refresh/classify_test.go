package refresh_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/attribution-io/ledger-core/internal/refresh"
)

func TestClassify(t *testing.T) {
	tenantID := uuid.MustParse("6f1d3c0e-4b1a-4c53-9a52-2f8a1d6b7e10")

	t.Run("invariant violation", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           "23514",
			ConstraintName: "allocations_sum_equality",
			Message:        "allocation sum mismatch",
			Detail:         fmt.Sprintf(`{"tenant_id":"%s","event_id":"evt-1","model_version":"v1","allocated":90,"revenue":100,"drift":-10}`, tenantID),
		}

		c := refresh.Classify(fmt.Errorf("refresh failed: %w", pgErr))

		assert.Equal(t, refresh.ErrorTypeInvariantViolation, c.Type)
		assert.Equal(t, map[string]string{
			"tenant_id":     tenantID.String(),
			"event_id":      "evt-1",
			"model_version": "v1",
			"drift":         "-10",
		}, c.Detail)
	})

	t.Run("other postgres error", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Severity:  "ERROR",
			Code:      "42P01",
			Message:   `relation "mv_missing" does not exist`,
			TableName: "mv_missing",
		}

		c := refresh.Classify(pgErr)

		assert.Equal(t, "postgres_42P01", c.Type)
		assert.Equal(t, pgErr.Error(), c.Message)
		assert.Equal(t, map[string]string{
			"sqlstate": "42P01",
			"severity": "ERROR",
			"table":    "mv_missing",
		}, c.Detail)
	})

	t.Run("check violation on another constraint", func(t *testing.T) {
		c := refresh.Classify(&pgconn.PgError{Code: "23514", ConstraintName: "amount_positive"})

		assert.Equal(t, "postgres_23514", c.Type)
		assert.Equal(t, "amount_positive", c.Detail["constraint"])
	})

	t.Run("panic", func(t *testing.T) {
		c := refresh.Classify(&refresh.PanicError{Value: "boom", Stack: []byte("goroutine 1")})

		assert.Equal(t, refresh.ErrorTypePanic, c.Type)
		assert.Equal(t, "refresh body panicked: boom", c.Message)
		assert.Equal(t, "goroutine 1", c.Detail["stack"])
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		c := refresh.Classify(fmt.Errorf("exec: %w", context.DeadlineExceeded))
		assert.Equal(t, refresh.ErrorTypeDeadlineExceeded, c.Type)
		assert.Nil(t, c.Detail)
	})

	t.Run("canceled", func(t *testing.T) {
		c := refresh.Classify(fmt.Errorf("exec: %w", context.Canceled))
		assert.Equal(t, refresh.ErrorTypeCanceled, c.Type)
	})

	t.Run("anything else", func(t *testing.T) {
		c := refresh.Classify(errors.New("connection reset"))
		assert.Equal(t, refresh.ErrorTypeRefresh, c.Type)
		assert.Equal(t, "connection reset", c.Message)
	})
}
