package ledger

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/attribution-io/ledger-core/internal/domain"
)

const (
	// ConstraintName is the constraint name the allocation triggers report
	ConstraintName = "allocations_sum_equality"

	// SQLStateCheckViolation is the SQLSTATE the allocation triggers raise
	SQLStateCheckViolation = "23514"
)

// AsViolation extracts the invariant violation carried by err, if any.
// It accepts both an already translated *domain.InvariantViolationError and the raw *pgconn.PgError
// raised by the allocation triggers.
func AsViolation(err error) (*domain.InvariantViolationError, bool) {
	if err == nil {
		return nil, false
	}

	var violation *domain.InvariantViolationError
	if errors.As(err, &violation) {
		return violation, true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, false
	}
	if pgErr.Code != SQLStateCheckViolation || pgErr.ConstraintName != ConstraintName {
		return nil, false
	}

	violation = &domain.InvariantViolationError{Message: pgErr.Message}
	if pgErr.Detail != "" {
		if err := json.Unmarshal([]byte(pgErr.Detail), violation); err != nil {
			// Keep the classification and the raw message naming the key
			return &domain.InvariantViolationError{Message: pgErr.Message}, true
		}
	}
	return violation, true
}

// TranslateError replaces a trigger failure with *domain.InvariantViolationError and returns any other
// error unchanged
func TranslateError(err error) error {
	if violation, ok := AsViolation(err); ok {
		return violation
	}
	return err
}
