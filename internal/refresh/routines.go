package refresh

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attribution-io/ledger-core/internal/registry"
)

// DefaultRoutines returns the refresh routines referenced by registry.DefaultViews
func DefaultRoutines() registry.Routines {
	return registry.Routines{
		registry.RoutineTenantModelSummary: refreshTenantModelSummary,
	}
}

// LoadRegistry builds the view registry from a catalog file, or from registry.DefaultViews when path is empty.
// Catalog views may reference the routines of DefaultRoutines.
func LoadRegistry(loader registry.CatalogLoader, path string) (registry.ViewRegistry, error) {
	if path == "" {
		reg, err := registry.New(DefaultRoutines(), registry.DefaultViews()...)
		if err != nil {
			return nil, fmt.Errorf("invalid built-in views: %w", err)
		}
		return reg, nil
	}
	return loader.Load(path, DefaultRoutines())
}

// refreshTenantModelSummary rebuilds one tenant's per-model summary from rpt_tenant_channel_totals,
// which must have been refreshed first
func refreshTenantModelSummary(ctx context.Context, tx *gorm.DB, tenantID *uuid.UUID) error {
	if tenantID == nil {
		return fmt.Errorf("tenant model summary needs a tenant")
	}

	db := tx.WithContext(ctx)
	if err := db.Exec("DELETE FROM rpt_tenant_model_summary WHERE tenant_id = ?", *tenantID).Error; err != nil {
		return fmt.Errorf("failed to clear tenant model summary: %w", err)
	}

	err := db.Exec(`
INSERT INTO rpt_tenant_model_summary (tenant_id, model_version, channel_count, allocated_amount, top_channel_code, refreshed_at)
SELECT t.tenant_id,
       t.model_version,
       count(*),
       sum(t.allocated_amount)::BIGINT,
       (array_agg(t.channel_code ORDER BY t.allocated_amount DESC, t.channel_code))[1],
       now()
  FROM rpt_tenant_channel_totals t
 WHERE t.tenant_id = ?
 GROUP BY t.tenant_id, t.model_version`, *tenantID).Error
	if err != nil {
		return fmt.Errorf("failed to build tenant model summary: %w", err)
	}

	return nil
}
