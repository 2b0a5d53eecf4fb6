package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attribution-io/ledger-core/internal/domain"
)

//go:generate mockgen -source=verifier.go -destination=../mocks/verifier.go -package=mocks -mock_names=Verifier=MockVerifier

// Verifier audits committed allocations against their revenue events without writing anything
type Verifier interface {
	// VerifyTenant returns every drifting key of a tenant, worst drift first
	VerifyTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.InvariantViolationError, error)

	// VerifyKeys returns the drifting keys among the given ones, worst drift first
	VerifyKeys(ctx context.Context, keys []domain.AllocationKey) ([]domain.InvariantViolationError, error)
}

type verifier struct {
	db *gorm.DB
}

// NewVerifier creates a verifier reading through db
func NewVerifier(db *gorm.DB) Verifier {
	return &verifier{db: db}
}

const driftQuery = `
SELECT a.tenant_id,
       a.event_id,
       a.model_version,
       SUM(a.allocated_amount)::BIGINT                    AS allocated,
       e.revenue_amount                                   AS revenue,
       ABS(SUM(a.allocated_amount) - e.revenue_amount)::BIGINT AS drift
  FROM allocations a
  JOIN revenue_events e
    ON e.tenant_id = a.tenant_id
   AND e.event_id = a.event_id
 WHERE %s
 GROUP BY a.tenant_id, a.event_id, a.model_version, e.revenue_amount
HAVING ABS(SUM(a.allocated_amount) - e.revenue_amount) > ?
 ORDER BY drift DESC, a.tenant_id, a.event_id, a.model_version`

func (v *verifier) VerifyTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.InvariantViolationError, error) {
	var violations []domain.InvariantViolationError
	query := fmt.Sprintf(driftQuery, "a.tenant_id = ?")
	if err := v.db.WithContext(ctx).Raw(query, tenantID, domain.AllocationTolerance).Scan(&violations).Error; err != nil {
		return nil, fmt.Errorf("failed to verify tenant %s: %w", tenantID, err)
	}
	return violations, nil
}

func (v *verifier) VerifyKeys(ctx context.Context, keys []domain.AllocationKey) ([]domain.InvariantViolationError, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var violations []domain.InvariantViolationError
	query := fmt.Sprintf(driftQuery, "(a.tenant_id, a.event_id, a.model_version) IN ?")
	if err := v.db.WithContext(ctx).Raw(query, KeyTuples(keys), domain.AllocationTolerance).Scan(&violations).Error; err != nil {
		return nil, fmt.Errorf("failed to verify %d keys: %w", len(keys), err)
	}
	return violations, nil
}
