package schema

import (
	"time"

	"github.com/google/uuid"
)

// RevenueEvent represents the revenue_events table - immutable revenue-generating occurrences
type RevenueEvent struct {
	// TenantID is the isolation boundary the event belongs to
	TenantID uuid.UUID `gorm:"column:tenant_id;primaryKey;type:uuid"`
	// EventID is the tenant-unique event identifier from ingestion
	EventID string `gorm:"column:event_id;primaryKey;type:text"`
	// RevenueAmount is the revenue in minor currency units
	RevenueAmount int64 `gorm:"column:revenue_amount;not null"`
	// Currency is the ISO 4217 code of the amount
	Currency string `gorm:"column:currency;not null;type:text;default:USD"`
	// OccurredAt is when the revenue was earned
	OccurredAt time.Time `gorm:"column:occurred_at;not null;default:now();type:timestamptz"`
	// CreatedAt is the timestamp when this event was ingested
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the RevenueEvent model
func (RevenueEvent) TableName() string {
	return "revenue_events"
}
