package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/types"
)

// RefreshReport is the JSON payload of refresh and refresh-all
type RefreshReport struct {
	CorrelationID string                 `json:"correlation_id"`
	Results       []domain.RefreshResult `json:"results"`
	Failed        int                    `json:"failed"`
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	var tenant, correlationID string

	cmd := &cobra.Command{
		Use:   "refresh <view>",
		Short: "Refresh one reporting view",
		Long: `Refresh one reporting view under its refresh lock. A refresh that finds the
lock held is skipped, not queued. Tenant-scoped views need --tenant.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)

			tenantID, err := parseTenant(tenant)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid --tenant", err)
			}
			corr := correlationOrNew(correlationID)

			return withDeps(cmd.Context(), rootOpts, f, func(deps *Deps) error {
				result, err := deps.Executor.RefreshOne(cmd.Context(), args[0], tenantID, corr)
				switch {
				case errors.Is(err, domain.ErrUnknownView):
					return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("view %s not found", args[0]), err)
				case errors.Is(err, domain.ErrTenantRequired):
					return f.Fail(ExitCommandError, ErrCodeInvalidArgs, fmt.Sprintf("view %s needs --tenant", args[0]), err)
				case err != nil:
					return f.Fail(ExitCommandError, ErrCodeRefresh, "refresh failed", err)
				}
				return outputRefresh(f, corr, []domain.RefreshResult{result})
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id for tenant-scoped views")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation id recorded with the result (default: new ULID)")

	return cmd
}

// NewRefreshAllCommand creates the refresh-all command.
func NewRefreshAllCommand(rootOpts *RootOptions) *cobra.Command {
	var tenant, correlationID string
	var global bool

	cmd := &cobra.Command{
		Use:   "refresh-all (--tenant <id> | --global)",
		Short: "Refresh every reporting view in dependency order",
		Long: `Refresh every registered view for a tenant in dependency order, or with
--global only the tenant-agnostic views. A failed view does not stop the batch.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)

			tenantID, err := parseTenant(tenant)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid --tenant", err)
			}
			if (tenantID == nil) == !global {
				return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "exactly one of --tenant or --global is required", nil)
			}
			corr := correlationOrNew(correlationID)

			return withDeps(cmd.Context(), rootOpts, f, func(deps *Deps) error {
				var results []domain.RefreshResult
				if global {
					results, err = deps.Executor.RefreshGlobal(cmd.Context(), corr)
				} else {
					results, err = deps.Executor.RefreshAll(cmd.Context(), *tenantID, corr)
				}
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeRefresh, "refresh failed", err)
				}
				return outputRefresh(f, corr, results)
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id to refresh")
	cmd.Flags().BoolVar(&global, "global", false, "refresh only tenant-agnostic views")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation id recorded with the results (default: new ULID)")

	return cmd
}

func correlationOrNew(id string) string {
	if id != "" {
		return id
	}
	return ulid.Make().String()
}

func outputRefresh(f *OutputFormatter, correlationID string, results []domain.RefreshResult) error {
	report := RefreshReport{CorrelationID: correlationID, Results: results}
	for _, r := range results {
		if r.Failed() {
			report.Failed++
		}
	}

	if f.IsJSON() {
		status := "ok"
		if report.Failed > 0 {
			status = "error"
		}
		if err := f.JSON(CLIResponse{Status: status, Data: report}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "correlation_id: %s\n", correlationID)
		writeResultTable(f.Writer, results)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d of %d view refresh(es) failed", ErrCodeRefresh, report.Failed, len(results)))
	}
	return nil
}

func writeResultTable(w io.Writer, results []domain.RefreshResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEW\tSCOPE\tOUTCOME\tDURATION\tERROR")
	for _, r := range results {
		errText := "-"
		if r.Failed() {
			errText = fmt.Sprintf("%s: %s", types.SafeString(r.ErrorType), types.SafeString(r.ErrorMessage))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ViewName, r.TenantScope(), r.Outcome, time.Duration(r.DurationMS)*time.Millisecond, errText)
	}
	_ = tw.Flush()
}
