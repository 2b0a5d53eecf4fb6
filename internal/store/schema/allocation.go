package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/attribution-io/ledger-core/internal/domain"
)

// Allocation represents the allocations table - one channel's share of one event's revenue under one model version
type Allocation struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TenantID is the isolation boundary the allocation belongs to
	TenantID uuid.UUID `gorm:"column:tenant_id;not null;type:uuid;uniqueIndex:idx_allocations_key_channel,priority:1"`
	// EventID references the source revenue event; nil once the event has been deleted
	EventID *string `gorm:"column:event_id;type:text;uniqueIndex:idx_allocations_key_channel,priority:2"`
	// ModelVersion is the attribution model version that produced the allocation
	ModelVersion string `gorm:"column:model_version;not null;type:text;uniqueIndex:idx_allocations_key_channel,priority:3"`
	// ChannelCode is the marketing channel credited
	ChannelCode string `gorm:"column:channel_code;not null;type:text;uniqueIndex:idx_allocations_key_channel,priority:4"`
	// AllocatedAmount is the credited amount in minor currency units
	AllocatedAmount int64 `gorm:"column:allocated_amount;not null"`
	// CreatedAt is the timestamp when this allocation was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this allocation was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Allocation model
func (Allocation) TableName() string {
	return "allocations"
}

// Key returns the allocation key and whether it can be validated (the event is still referenced)
func (a Allocation) Key() (domain.AllocationKey, bool) {
	if a.EventID == nil {
		return domain.AllocationKey{}, false
	}
	return domain.AllocationKey{TenantID: a.TenantID, EventID: *a.EventID, ModelVersion: a.ModelVersion}, true
}
