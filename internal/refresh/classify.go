package refresh

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/attribution-io/ledger-core/internal/ledger"
)

// Error types recorded on FAILED results
const (
	ErrorTypeInvariantViolation = "invariant_violation"
	ErrorTypeDeadlineExceeded   = "deadline_exceeded"
	ErrorTypeCanceled           = "canceled"
	ErrorTypePanic              = "panic"
	ErrorTypeRefresh            = "refresh_error"

	postgresErrorTypePrefix = "postgres_"
)

// PanicError wraps a value recovered from a refresh body
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("refresh body panicked: %v", e.Value)
}

// Classification is how a refresh failure is recorded
type Classification struct {
	Type    string
	Message string
	Detail  map[string]string
}

// Classify maps a refresh failure to its error type, message and structured detail
func Classify(err error) Classification {
	c := Classification{Type: ErrorTypeRefresh, Message: err.Error()}

	if violation, ok := ledger.AsViolation(err); ok {
		c.Type = ErrorTypeInvariantViolation
		c.Detail = map[string]string{
			"tenant_id":     violation.TenantID.String(),
			"event_id":      violation.EventID,
			"model_version": violation.ModelVersion,
			"drift":         strconv.FormatInt(violation.Drift, 10),
		}
		return c
	}

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		c.Type = ErrorTypePanic
		c.Detail = map[string]string{"stack": string(panicErr.Stack)}
		return c
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		c.Type = postgresErrorTypePrefix + pgErr.Code
		c.Detail = pgErrorDetail(pgErr)
		return c
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.Type = ErrorTypeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		c.Type = ErrorTypeCanceled
	}

	return c
}

func pgErrorDetail(pgErr *pgconn.PgError) map[string]string {
	detail := map[string]string{"sqlstate": pgErr.Code}
	fields := map[string]string{
		"severity":   pgErr.Severity,
		"detail":     pgErr.Detail,
		"hint":       pgErr.Hint,
		"where":      pgErr.Where,
		"schema":     pgErr.SchemaName,
		"table":      pgErr.TableName,
		"constraint": pgErr.ConstraintName,
		"routine":    pgErr.Routine,
	}
	for k, v := range fields {
		if v != "" {
			detail[k] = v
		}
	}
	return detail
}
