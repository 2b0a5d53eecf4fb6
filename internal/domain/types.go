package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attribution-io/ledger-core/internal/types"
)

// AllocationKey identifies the group of allocations that must balance against one revenue event
type AllocationKey struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	EventID      string    `json:"event_id"`
	ModelVersion string    `json:"model_version"`
}

// String returns the canonical representation of the key
func (k AllocationKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.TenantID, k.EventID, k.ModelVersion)
}

// Outcome is the terminal state of one refresh attempt
type Outcome string

const (
	OutcomeSuccess         Outcome = "SUCCESS"
	OutcomeSkippedLockHeld Outcome = "SKIPPED_LOCK_HELD"
	OutcomeFailed          Outcome = "FAILED"
)

// IsValid checks if the outcome is one of the three terminal states
func (o Outcome) IsValid() bool {
	return o == OutcomeSuccess || o == OutcomeSkippedLockHeld || o == OutcomeFailed
}

// RefreshResult is the uniform outcome record emitted for every refresh attempt
type RefreshResult struct {
	ViewName      string     `json:"view_name"`
	TenantID      *uuid.UUID `json:"tenant_id"`
	CorrelationID string     `json:"correlation_id"`
	Outcome       Outcome    `json:"outcome"`
	StartedAt     time.Time  `json:"started_at"`
	DurationMS    int64      `json:"duration_ms"`
	ErrorType     *string    `json:"error_type"`
	ErrorMessage  *string    `json:"error_message"`

	// ErrorDetail carries structured failure context for the audit trail; it is not published
	ErrorDetail map[string]string `json:"-"`
}

// Failed reports whether the refresh body ran and failed
func (r RefreshResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}

// Err returns the failure as an error, or nil unless the outcome is FAILED
func (r RefreshResult) Err() error {
	if r.Outcome != OutcomeFailed {
		return nil
	}
	return &RefreshError{
		ViewName: r.ViewName,
		Type:     types.SafeString(r.ErrorType),
		Message:  types.SafeString(r.ErrorMessage),
	}
}

// TenantScope returns the tenant identifier as text, or GlobalTenantToken for tenant-agnostic results
func (r RefreshResult) TenantScope() string {
	return TenantToken(r.TenantID)
}

// RefreshError is the error form of a FAILED refresh result
type RefreshError struct {
	ViewName string
	Type     string
	Message  string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh of %s failed (%s): %s", e.ViewName, e.Type, e.Message)
}

// TenantToken returns the tenant identifier used in lock keys and refresh state
func TenantToken(tenantID *uuid.UUID) string {
	if tenantID == nil {
		return GlobalTenantToken
	}
	return tenantID.String()
}
