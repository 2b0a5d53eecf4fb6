package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/store/schema"
)

// StalenessReport describes how old one view's data is within a tenant scope.
// Budgets are informational; nothing here blocks or schedules a refresh.
type StalenessReport struct {
	ViewName      string          `json:"view_name"`
	TenantScope   string          `json:"tenant_scope"`
	Budget        time.Duration   `json:"budget"`
	LastOutcome   *domain.Outcome `json:"last_outcome"`
	LastAttemptAt *time.Time      `json:"last_attempt_at"`
	LastSuccessAt *time.Time      `json:"last_success_at"`
	// Age is the time since the last success; nil when the view never refreshed successfully
	Age *time.Duration `json:"age"`
	// Stale is set when the view never succeeded, or its age exceeds a non-zero budget
	Stale bool `json:"stale"`
}

// Staleness reports, in dependency order, how old each view's data is. With a tenant, tenant-scoped views are
// reported for that tenant and tenant-agnostic views for the global scope; without one, only tenant-agnostic
// views are reported.
func (e *executor) Staleness(ctx context.Context, tenantID *uuid.UUID) ([]StalenessReport, error) {
	states := map[string]map[string]schema.ViewRefreshState{}
	load := func(scope string) error {
		if _, ok := states[scope]; ok {
			return nil
		}
		rows, err := e.store.GetViewRefreshStates(ctx, scope)
		if err != nil {
			return fmt.Errorf("failed to load refresh state for scope %s: %w", scope, err)
		}
		byView := make(map[string]schema.ViewRefreshState, len(rows))
		for _, row := range rows {
			byView[row.ViewName] = row
		}
		states[scope] = byView
		return nil
	}

	now := e.clock.Now()
	var reports []StalenessReport
	for _, view := range e.registry.TopologicalOrder() {
		var scope string
		switch {
		case !view.TenantScoped:
			scope = domain.GlobalTenantToken
		case tenantID != nil:
			scope = tenantID.String()
		default:
			continue
		}

		if err := load(scope); err != nil {
			return nil, err
		}

		report := StalenessReport{
			ViewName:    view.Name,
			TenantScope: scope,
			Budget:      view.StalenessBudget,
			Stale:       true,
		}

		if state, ok := states[scope][view.Name]; ok {
			outcome := domain.Outcome(state.LastOutcome)
			attemptAt := state.LastAttemptAt
			report.LastOutcome = &outcome
			report.LastAttemptAt = &attemptAt
			report.LastSuccessAt = state.LastSuccessAt

			if state.LastSuccessAt != nil {
				age := now.Sub(*state.LastSuccessAt)
				report.Age = &age
				report.Stale = view.StalenessBudget > 0 && age > view.StalenessBudget
			}
		}

		reports = append(reports, report)
	}

	return reports, nil
}
