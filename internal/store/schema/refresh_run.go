package schema

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RefreshRun represents the refresh_runs table - audit trail of every refresh attempt
type RefreshRun struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ViewName      string     `gorm:"column:view_name;not null;type:text"`
	TenantID      *uuid.UUID `gorm:"column:tenant_id;type:uuid"`
	CorrelationID string     `gorm:"column:correlation_id;not null;type:text"`
	Outcome       string     `gorm:"column:outcome;not null;type:text"`
	StartedAt     time.Time  `gorm:"column:started_at;not null;type:timestamptz"`
	DurationMS    int64      `gorm:"column:duration_ms;not null"`
	ErrorType     *string    `gorm:"column:error_type;type:text"`
	ErrorMessage  *string    `gorm:"column:error_message;type:text"`
	// ErrorDetail holds structured failure context such as the Postgres SQLSTATE and detail
	ErrorDetail datatypes.JSON `gorm:"column:error_detail;type:jsonb"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the RefreshRun model
func (RefreshRun) TableName() string {
	return "refresh_runs"
}

// ViewRefreshState represents the view_refresh_state table - latest refresh status per view and tenant scope
type ViewRefreshState struct {
	ViewName      string     `gorm:"column:view_name;primaryKey;type:text"`
	TenantScope   string     `gorm:"column:tenant_scope;primaryKey;type:text"`
	LastOutcome   string     `gorm:"column:last_outcome;not null;type:text"`
	LastAttemptAt time.Time  `gorm:"column:last_attempt_at;not null;type:timestamptz"`
	LastSuccessAt *time.Time `gorm:"column:last_success_at;type:timestamptz"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ViewRefreshState model
func (ViewRefreshState) TableName() string {
	return "view_refresh_state"
}
