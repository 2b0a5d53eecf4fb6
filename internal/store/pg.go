package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/ledger"
	"github.com/attribution-io/ledger-core/internal/lockkey"
	"github.com/attribution-io/ledger-core/internal/store/schema"
)

const (
	// allocationFieldsPerRecord counts tenant_id, event_id, model_version, channel_code,
	// allocated_amount, created_at and updated_at
	allocationFieldsPerRecord = 7

	// revenueEventFieldsPerRecord counts tenant_id, event_id, revenue_amount, currency, occurred_at and created_at
	revenueEventFieldsPerRecord = 6

	// keyFieldsPerTuple counts the parameters of one (tenant_id, event_id, model_version) tuple
	keyFieldsPerTuple = 3

	defaultCurrency      = "USD"
	defaultRefreshRunCap = 100
)

type pgStore struct {
	db *gorm.DB
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Every refresh holds one connection for the whole transaction, so MaxOpenConns bounds refresh concurrency.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 20
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk writes that stays under PostgreSQL's
// limit of 65535 parameters per statement, keeping a fixed headroom for GORM-added clauses.
//
// Example with headroom of 1000:
//   - Allocation: 7 fields → (65,535 - 1,000) / 7 = 9,219 records/batch
//   - RevenueEvent: 6 fields → (65,535 - 1,000) / 6 = 10,755 records/batch
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000 // Total parameter headroom for batch-level overhead

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return max(totalRecords, 1)
	}

	return safeBatchSize
}

// =============================================================================
// Revenue events
// =============================================================================

// CreateRevenueEvents ingests revenue events; existing events are left untouched
func (s *pgStore) CreateRevenueEvents(ctx context.Context, inputs []CreateRevenueEventInput) error {
	if len(inputs) == 0 {
		return nil
	}

	events := make([]schema.RevenueEvent, 0, len(inputs))
	for _, input := range inputs {
		if input.TenantID == uuid.Nil {
			return fmt.Errorf("revenue event %q has no tenant", input.EventID)
		}
		if strings.TrimSpace(input.EventID) == "" {
			return fmt.Errorf("revenue event for tenant %s has no event id", input.TenantID)
		}
		if input.RevenueAmount < 0 {
			return fmt.Errorf("revenue event %s has negative revenue amount %d", input.EventID, input.RevenueAmount)
		}

		currency := input.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		occurredAt := input.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = time.Now().UTC()
		}

		events = append(events, schema.RevenueEvent{
			TenantID:      input.TenantID,
			EventID:       input.EventID,
			RevenueAmount: input.RevenueAmount,
			Currency:      currency,
			OccurredAt:    occurredAt,
		})
	}

	batchSize := calculateSafeBatchSize(len(events), revenueEventFieldsPerRecord)
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).CreateInBatches(events, batchSize).Error; err != nil {
		return fmt.Errorf("failed to create revenue events: %w", err)
	}

	return nil
}

// GetRevenueEvent retrieves an event, or nil when it does not exist
func (s *pgStore) GetRevenueEvent(ctx context.Context, tenantID uuid.UUID, eventID string) (*schema.RevenueEvent, error) {
	query := func(db *gorm.DB) (*schema.RevenueEvent, error) {
		var event schema.RevenueEvent
		err := db.WithContext(ctx).
			Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
			First(&event).Error
		if err != nil {
			return nil, err
		}
		return &event, nil
	}

	event, err := query(s.db)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get revenue event: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	event, err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return event, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get revenue event from primary: %w", err)
}

// DeleteRevenueEvent deletes an event; the foreign key orphans its allocations by clearing their event_id
func (s *pgStore) DeleteRevenueEvent(ctx context.Context, tenantID uuid.UUID, eventID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Delete(&schema.RevenueEvent{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete revenue event: %w", ledger.TranslateError(result.Error))
	}
	return result.RowsAffected > 0, nil
}

// ListTenantIDs returns every tenant that has at least one revenue event
func (s *pgStore) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&schema.RevenueEvent{}).
		Distinct().
		Order("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenantIDs, nil
}

// =============================================================================
// Allocations
// =============================================================================

// buildAllocations validates inputs and converts them into rows.
// A key and channel may appear only once: a single upsert statement cannot touch the same row twice.
func buildAllocations(inputs []AllocationInput) ([]schema.Allocation, error) {
	type rowKey struct {
		key     domain.AllocationKey
		channel string
	}

	seen := make(map[rowKey]struct{}, len(inputs))
	rows := make([]schema.Allocation, 0, len(inputs))
	for _, input := range inputs {
		if input.TenantID == uuid.Nil {
			return nil, fmt.Errorf("allocation for event %q has no tenant", input.EventID)
		}
		if strings.TrimSpace(input.EventID) == "" {
			return nil, fmt.Errorf("allocation for tenant %s has no event id", input.TenantID)
		}
		if strings.TrimSpace(input.ModelVersion) == "" {
			return nil, fmt.Errorf("allocation for event %s has no model version", input.EventID)
		}
		if strings.TrimSpace(input.ChannelCode) == "" {
			return nil, fmt.Errorf("allocation for event %s has no channel code", input.EventID)
		}

		rk := rowKey{key: input.Key(), channel: input.ChannelCode}
		if _, dup := seen[rk]; dup {
			return nil, fmt.Errorf("duplicate allocation for %s channel %s", rk.key, rk.channel)
		}
		seen[rk] = struct{}{}

		eventID := input.EventID
		rows = append(rows, schema.Allocation{
			TenantID:        input.TenantID,
			EventID:         &eventID,
			ModelVersion:    input.ModelVersion,
			ChannelCode:     input.ChannelCode,
			AllocatedAmount: input.AllocatedAmount,
		})
	}

	return rows, nil
}

// UpsertAllocations inserts or updates allocation rows. Rows are grouped so that each key is written by
// exactly one statement; the database validates every statement, so the whole call either commits or
// fails with *domain.InvariantViolationError naming the worst key.
func (s *pgStore) UpsertAllocations(ctx context.Context, inputs []AllocationInput) (*WriteSummary, error) {
	rows, err := buildAllocations(inputs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &WriteSummary{}, nil
	}

	batches := ledger.PlanBatches(rows, calculateSafeBatchSize(len(rows), allocationFieldsPerRecord))
	summary := &WriteSummary{
		Rows:       len(rows),
		Keys:       len(ledger.ImplicatedKeys(nil, rows)),
		Statements: len(batches),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "tenant_id"}, {Name: "event_id"}, {Name: "model_version"}, {Name: "channel_code"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"allocated_amount", "updated_at"}),
			}).Create(&batch).Error; err != nil {
				return fmt.Errorf("failed to upsert allocations: %w", ledger.TranslateError(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// ReplaceAllocations deletes the rows of every key present in inputs and inserts the new row set in the
// same transaction. Keys left empty by the delete are not validated, so the swap is legal as long as the
// new rows balance.
func (s *pgStore) ReplaceAllocations(ctx context.Context, inputs []AllocationInput) (*WriteSummary, error) {
	rows, err := buildAllocations(inputs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &WriteSummary{}, nil
	}

	keys := ledger.ImplicatedKeys(nil, rows)
	keyChunks := ledger.ChunkKeys(keys, calculateSafeBatchSize(len(keys), keyFieldsPerTuple))
	batches := ledger.PlanBatches(rows, calculateSafeBatchSize(len(rows), allocationFieldsPerRecord))
	summary := &WriteSummary{
		Rows:       len(rows),
		Keys:       len(keys),
		Statements: len(keyChunks) + len(batches),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, chunk := range keyChunks {
			if err := tx.
				Where("(tenant_id, event_id, model_version) IN ?", ledger.KeyTuples(chunk)).
				Delete(&schema.Allocation{}).Error; err != nil {
				return fmt.Errorf("failed to clear allocations: %w", ledger.TranslateError(err))
			}
		}

		for _, batch := range batches {
			if err := tx.Create(&batch).Error; err != nil {
				return fmt.Errorf("failed to insert allocations: %w", ledger.TranslateError(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// DeleteAllocations removes every row of the given keys
func (s *pgStore) DeleteAllocations(ctx context.Context, keys []domain.AllocationKey) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	var deleted int64
	chunks := ledger.ChunkKeys(keys, calculateSafeBatchSize(len(keys), keyFieldsPerTuple))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, chunk := range chunks {
			result := tx.
				Where("(tenant_id, event_id, model_version) IN ?", ledger.KeyTuples(chunk)).
				Delete(&schema.Allocation{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete allocations: %w", ledger.TranslateError(result.Error))
			}
			deleted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// DeleteAllocationChannels removes some channels of one key; the remaining rows must still balance
func (s *pgStore) DeleteAllocationChannels(ctx context.Context, key domain.AllocationKey, channelCodes []string) (int64, error) {
	if len(channelCodes) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ? AND model_version = ?", key.TenantID, key.EventID, key.ModelVersion).
		Where("channel_code IN ?", channelCodes).
		Delete(&schema.Allocation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete allocation channels: %w", ledger.TranslateError(result.Error))
	}
	return result.RowsAffected, nil
}

// TouchAllocations rewrites updated_at for the rows of a key; a nil event targets orphaned rows
func (s *pgStore) TouchAllocations(ctx context.Context, tenantID uuid.UUID, eventID *string, modelVersion string) (int64, error) {
	query := s.db.WithContext(ctx).
		Model(&schema.Allocation{}).
		Where("tenant_id = ? AND model_version = ?", tenantID, modelVersion)
	if eventID == nil {
		query = query.Where("event_id IS NULL")
	} else {
		query = query.Where("event_id = ?", *eventID)
	}

	result := query.Update("updated_at", gorm.Expr("now()"))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to touch allocations: %w", ledger.TranslateError(result.Error))
	}
	return result.RowsAffected, nil
}

// GetAllocations retrieves the rows of one key ordered by channel
func (s *pgStore) GetAllocations(ctx context.Context, key domain.AllocationKey) ([]schema.Allocation, error) {
	var allocations []schema.Allocation
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ? AND model_version = ?", key.TenantID, key.EventID, key.ModelVersion).
		Order("channel_code ASC").
		Find(&allocations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get allocations: %w", err)
	}
	return allocations, nil
}

// GetOrphanedAllocations retrieves the rows of a tenant whose event has been deleted
func (s *pgStore) GetOrphanedAllocations(ctx context.Context, tenantID uuid.UUID) ([]schema.Allocation, error) {
	var allocations []schema.Allocation
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event_id IS NULL", tenantID).
		Order("model_version ASC, channel_code ASC, id ASC").
		Find(&allocations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orphaned allocations: %w", err)
	}
	return allocations, nil
}

// GetAllocationSum returns the current balance of one key
func (s *pgStore) GetAllocationSum(ctx context.Context, key domain.AllocationKey) (*AllocationSum, error) {
	var totals struct {
		Allocated int64
		RowCount  int64
	}
	err := s.db.WithContext(ctx).
		Model(&schema.Allocation{}).
		Select("COALESCE(SUM(allocated_amount), 0)::BIGINT AS allocated, COUNT(*) AS row_count").
		Where("tenant_id = ? AND event_id = ? AND model_version = ?", key.TenantID, key.EventID, key.ModelVersion).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations: %w", err)
	}

	sum := &AllocationSum{Key: key, Allocated: totals.Allocated, Rows: totals.RowCount}

	event, err := s.GetRevenueEvent(ctx, key.TenantID, key.EventID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		revenue := event.RevenueAmount
		sum.Revenue = &revenue
	}

	return sum, nil
}

// =============================================================================
// Refresh coordination
// =============================================================================

// TryWithAdvisoryXactLock runs fn in a transaction whose first statement takes the transaction-scoped
// advisory lock for key without waiting. When the lock is held elsewhere, fn is not run and the empty
// transaction commits.
func (s *pgStore) TryWithAdvisoryXactLock(ctx context.Context, key lockkey.Key, fn LockedFunc) (bool, error) {
	acquired := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw("SELECT pg_try_advisory_xact_lock(?::integer, ?::integer)", key.ViewKey, key.ScopeKey).
			Scan(&acquired).Error; err != nil {
			return fmt.Errorf("failed to try advisory lock %s: %w", key, err)
		}
		if !acquired {
			return nil
		}
		return fn(tx)
	})
	return acquired, err
}

// RecordRefreshResult appends a refresh run and updates the latest state of the view and scope
func (s *pgStore) RecordRefreshResult(ctx context.Context, result domain.RefreshResult) error {
	if !result.Outcome.IsValid() {
		return fmt.Errorf("invalid refresh outcome: %q", result.Outcome)
	}

	var detail datatypes.JSON
	if len(result.ErrorDetail) > 0 {
		raw, err := json.Marshal(result.ErrorDetail)
		if err != nil {
			return fmt.Errorf("failed to marshal refresh error detail: %w", err)
		}
		detail = datatypes.JSON(raw)
	}

	run := schema.RefreshRun{
		ViewName:      result.ViewName,
		TenantID:      result.TenantID,
		CorrelationID: result.CorrelationID,
		Outcome:       string(result.Outcome),
		StartedAt:     result.StartedAt,
		DurationMS:    result.DurationMS,
		ErrorType:     result.ErrorType,
		ErrorMessage:  result.ErrorMessage,
		ErrorDetail:   detail,
	}

	state := schema.ViewRefreshState{
		ViewName:      result.ViewName,
		TenantScope:   result.TenantScope(),
		LastOutcome:   string(result.Outcome),
		LastAttemptAt: result.StartedAt,
		UpdatedAt:     time.Now().UTC(),
	}
	if result.Outcome == domain.OutcomeSuccess {
		successAt := result.StartedAt
		state.LastSuccessAt = &successAt
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to create refresh run: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "view_name"}, {Name: "tenant_scope"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_outcome":    gorm.Expr("EXCLUDED.last_outcome"),
				"last_attempt_at": gorm.Expr("EXCLUDED.last_attempt_at"),
				"last_success_at": gorm.Expr("COALESCE(EXCLUDED.last_success_at, view_refresh_state.last_success_at)"),
				"updated_at":      gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).Create(&state).Error; err != nil {
			return fmt.Errorf("failed to upsert view refresh state: %w", err)
		}

		return nil
	})
}

// GetViewRefreshStates returns the latest state of every view for a tenant scope, ordered by view name
func (s *pgStore) GetViewRefreshStates(ctx context.Context, tenantScope string) ([]schema.ViewRefreshState, error) {
	var states []schema.ViewRefreshState
	err := s.db.WithContext(ctx).
		Where("tenant_scope = ?", tenantScope).
		Order("view_name ASC").
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get view refresh states: %w", err)
	}
	return states, nil
}

// GetRefreshRuns returns refresh runs newest first
func (s *pgStore) GetRefreshRuns(ctx context.Context, filter RefreshRunFilter) ([]schema.RefreshRun, error) {
	query := s.db.WithContext(ctx).Model(&schema.RefreshRun{})

	if filter.ViewName != nil {
		query = query.Where("view_name = ?", *filter.ViewName)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.CorrelationID != nil {
		query = query.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", string(*filter.Outcome))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRefreshRunCap
	}

	var runs []schema.RefreshRun
	if err := query.Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to get refresh runs: %w", err)
	}
	return runs, nil
}
