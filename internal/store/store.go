package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/lockkey"
	"github.com/attribution-io/ledger-core/internal/store/schema"
)

//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore

// CreateRevenueEventInput represents the input for ingesting a revenue event
type CreateRevenueEventInput struct {
	TenantID      uuid.UUID
	EventID       string
	RevenueAmount int64
	Currency      string
	OccurredAt    time.Time
}

// AllocationInput represents one channel's share of an event's revenue
type AllocationInput struct {
	TenantID        uuid.UUID
	EventID         string
	ModelVersion    string
	ChannelCode     string
	AllocatedAmount int64
}

// Key returns the allocation key the input belongs to
func (i AllocationInput) Key() domain.AllocationKey {
	return domain.AllocationKey{TenantID: i.TenantID, EventID: i.EventID, ModelVersion: i.ModelVersion}
}

// WriteSummary describes how a batch write was split into statements
type WriteSummary struct {
	// Rows is the number of allocation rows written
	Rows int
	// Keys is the number of distinct allocation keys touched
	Keys int
	// Statements is the number of write statements issued, each validated by the database on its own
	Statements int
}

// AllocationSum is the current balance of one allocation key
type AllocationSum struct {
	Key       domain.AllocationKey
	Allocated int64
	Rows      int64
	// Revenue is nil when the event does not exist
	Revenue *int64
}

// Drift returns the absolute difference between allocated and revenue amounts, or 0 without an event
func (s AllocationSum) Drift() int64 {
	if s.Revenue == nil {
		return 0
	}
	d := s.Allocated - *s.Revenue
	if d < 0 {
		return -d
	}
	return d
}

// RefreshRunFilter narrows a refresh run query
type RefreshRunFilter struct {
	ViewName      *string
	TenantID      *uuid.UUID
	CorrelationID *string
	Outcome       *domain.Outcome
	Limit         int
}

// LockedFunc runs inside the transaction that holds an advisory lock
type LockedFunc func(tx *gorm.DB) error

// Store defines the interface for database operations
type Store interface {
	// CreateRevenueEvents ingests revenue events; existing events are left untouched
	CreateRevenueEvents(ctx context.Context, inputs []CreateRevenueEventInput) error
	// GetRevenueEvent retrieves an event, or nil when it does not exist
	GetRevenueEvent(ctx context.Context, tenantID uuid.UUID, eventID string) (*schema.RevenueEvent, error)
	// DeleteRevenueEvent deletes an event and orphans its allocations; reports whether the event existed
	DeleteRevenueEvent(ctx context.Context, tenantID uuid.UUID, eventID string) (bool, error)
	// ListTenantIDs returns every tenant that has at least one revenue event
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)

	// UpsertAllocations inserts or updates allocation rows, keeping every key within one statement
	UpsertAllocations(ctx context.Context, inputs []AllocationInput) (*WriteSummary, error)
	// ReplaceAllocations replaces the full row set of every key present in inputs in one transaction
	ReplaceAllocations(ctx context.Context, inputs []AllocationInput) (*WriteSummary, error)
	// DeleteAllocations removes every row of the given keys
	DeleteAllocations(ctx context.Context, keys []domain.AllocationKey) (int64, error)
	// DeleteAllocationChannels removes some channels of one key; the remaining rows must still balance
	DeleteAllocationChannels(ctx context.Context, key domain.AllocationKey, channelCodes []string) (int64, error)
	// TouchAllocations rewrites updated_at for the rows of a key; a nil event targets orphaned rows
	TouchAllocations(ctx context.Context, tenantID uuid.UUID, eventID *string, modelVersion string) (int64, error)
	// GetAllocations retrieves the rows of one key ordered by channel
	GetAllocations(ctx context.Context, key domain.AllocationKey) ([]schema.Allocation, error)
	// GetOrphanedAllocations retrieves the rows of a tenant whose event has been deleted
	GetOrphanedAllocations(ctx context.Context, tenantID uuid.UUID) ([]schema.Allocation, error)
	// GetAllocationSum returns the current balance of one key
	GetAllocationSum(ctx context.Context, key domain.AllocationKey) (*AllocationSum, error)

	// TryWithAdvisoryXactLock opens a transaction, attempts the transaction-scoped advisory lock as its
	// first statement and runs fn only when the lock was granted. The lock is released when the
	// transaction ends. It reports whether the lock was acquired
	TryWithAdvisoryXactLock(ctx context.Context, key lockkey.Key, fn LockedFunc) (bool, error)
	// RecordRefreshResult appends a refresh run and updates the latest state of the view and scope
	RecordRefreshResult(ctx context.Context, result domain.RefreshResult) error
	// GetViewRefreshStates returns the latest state of every view for a tenant scope, ordered by view name
	GetViewRefreshStates(ctx context.Context, tenantScope string) ([]schema.ViewRefreshState, error)
	// GetRefreshRuns returns refresh runs newest first
	GetRefreshRuns(ctx context.Context, filter RefreshRunFilter) ([]schema.RefreshRun, error)
}
