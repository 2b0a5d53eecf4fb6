package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownView is returned when a refresh is requested for a view that is not registered
	ErrUnknownView = errors.New("unknown view")

	// ErrTenantRequired is returned when a tenant-scoped refresh is requested without a tenant
	ErrTenantRequired = errors.New("tenant required")

	// ErrDependencyCycle is returned when the view dependency graph contains a cycle
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrUnknownDependency is returned when a view depends on a view that is not registered
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrDuplicateView is returned when two views share the same name
	ErrDuplicateView = errors.New("duplicate view")

	// ErrInvalidView is returned when a view definition is malformed
	ErrInvalidView = errors.New("invalid view")

	// ErrInvariantViolation is matched by every allocation sum-equality failure
	ErrInvariantViolation = errors.New("allocation invariant violation")
)

// InvariantViolationError describes the key that was out of balance when a write was aborted
type InvariantViolationError struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	EventID      string    `json:"event_id"`
	ModelVersion string    `json:"model_version"`
	Allocated    int64     `json:"allocated"`
	Revenue      int64     `json:"revenue"`
	Drift        int64     `json:"drift"`

	// Message is the database diagnostic, kept when the structured detail could not be read
	Message string `json:"-"`
}

func (e *InvariantViolationError) Error() string {
	if e.EventID == "" && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("allocation sum drift for tenant %s event %s model_version %s: drift=%d (allocated=%d revenue=%d)",
		e.TenantID, e.EventID, e.ModelVersion, e.Drift, e.Allocated, e.Revenue)
}

// Is reports whether target is ErrInvariantViolation
func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// Key returns the allocation key named by the violation
func (e *InvariantViolationError) Key() AllocationKey {
	return AllocationKey{TenantID: e.TenantID, EventID: e.EventID, ModelVersion: e.ModelVersion}
}
