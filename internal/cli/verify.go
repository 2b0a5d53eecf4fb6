package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/attribution-io/ledger-core/internal/domain"
)

// VerifyResult is the JSON payload of verify
type VerifyResult struct {
	TenantID   uuid.UUID                        `json:"tenant_id"`
	Valid      bool                             `json:"valid"`
	Violations []domain.InvariantViolationError `json:"violations"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var tenant string
	var keys []string

	cmd := &cobra.Command{
		Use:   "verify --tenant <id>",
		Short: "Report allocation sums that drifted from revenue",
		Long: `Recompute allocation sums against revenue for a tenant and report every
(event, model version) key that is out of balance. Read-only.

Use --key event_id:model_version to check only specific keys.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)

			tenantID, err := parseTenant(tenant)
			if err != nil || tenantID == nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "verify needs a valid --tenant", err)
			}
			allocationKeys, err := parseAllocationKeys(*tenantID, keys)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid --key", err)
			}

			return withDeps(cmd.Context(), rootOpts, f, func(deps *Deps) error {
				var violations []domain.InvariantViolationError
				if len(allocationKeys) > 0 {
					violations, err = deps.Verifier.VerifyKeys(cmd.Context(), allocationKeys)
				} else {
					violations, err = deps.Verifier.VerifyTenant(cmd.Context(), *tenantID)
				}
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "verification failed", err)
				}

				return outputVerify(f, *tenantID, violations)
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id to verify")
	cmd.Flags().StringSliceVar(&keys, "key", nil, "event_id:model_version to verify (repeatable)")

	return cmd
}

func outputVerify(f *OutputFormatter, tenantID uuid.UUID, violations []domain.InvariantViolationError) error {
	if violations == nil {
		violations = []domain.InvariantViolationError{}
	}
	result := VerifyResult{TenantID: tenantID, Valid: len(violations) == 0, Violations: violations}

	if f.IsJSON() {
		status := "ok"
		if !result.Valid {
			status = "error"
		}
		if err := f.JSON(CLIResponse{Status: status, Data: result}); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(f.Writer, "✓ No allocation drift for tenant %s\n", tenantID)
	} else {
		fmt.Fprintf(f.Writer, "✗ %d drifted key(s) for tenant %s\n", len(violations), tenantID)
		for _, v := range violations {
			fmt.Fprintf(f.Writer, "  %s/%s: allocated=%d revenue=%d drift=%d\n",
				v.EventID, v.ModelVersion, v.Allocated, v.Revenue, v.Drift)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d drifted key(s)", ErrCodeViolation, len(violations)))
	}
	return nil
}

// parseTenant parses an optional tenant id; "" means no tenant
func parseTenant(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id %q: %w", s, err)
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("tenant id must not be the nil uuid")
	}
	return &id, nil
}

func parseAllocationKeys(tenantID uuid.UUID, raw []string) ([]domain.AllocationKey, error) {
	keys := make([]domain.AllocationKey, 0, len(raw))
	for _, r := range raw {
		eventID, modelVersion, ok := strings.Cut(r, ":")
		if !ok || eventID == "" || modelVersion == "" {
			return nil, fmt.Errorf("key %q is not event_id:model_version", r)
		}
		keys = append(keys, domain.AllocationKey{TenantID: tenantID, EventID: eventID, ModelVersion: modelVersion})
	}
	return keys, nil
}
