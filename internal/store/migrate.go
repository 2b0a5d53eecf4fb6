package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	sqlschema "github.com/attribution-io/ledger-core/db"
)

// ApplySchema executes the embedded schema against db. The statements are idempotent, so the call is
// safe on every deploy.
func ApplySchema(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, sqlschema.InitSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
