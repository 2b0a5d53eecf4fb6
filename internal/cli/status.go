package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/attribution-io/ledger-core/internal/refresh"
)

// StatusResult is the JSON payload of status
type StatusResult struct {
	Views []refresh.StalenessReport `json:"views"`
	Stale int                       `json:"stale"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "status [--tenant <id>]",
		Short: "Show how stale each reporting view is",
		Long: `Show the last refresh outcome and data age of each view against its
staleness budget. Without --tenant only tenant-agnostic views are listed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)

			tenantID, err := parseTenant(tenant)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid --tenant", err)
			}

			return withDeps(cmd.Context(), rootOpts, f, func(deps *Deps) error {
				reports, err := deps.Executor.Staleness(cmd.Context(), tenantID)
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to read refresh state", err)
				}

				result := StatusResult{Views: reports}
				for _, r := range reports {
					if r.Stale {
						result.Stale++
					}
				}
				if result.Views == nil {
					result.Views = []refresh.StalenessReport{}
				}

				if f.IsJSON() {
					return f.JSON(CLIResponse{Status: "ok", Data: result})
				}
				writeStalenessTable(f.Writer, reports)
				fmt.Fprintf(f.Writer, "%d of %d view(s) stale\n", result.Stale, len(reports))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id whose tenant-scoped views to include")

	return cmd
}

func writeStalenessTable(w io.Writer, reports []refresh.StalenessReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEW\tSCOPE\tLAST OUTCOME\tAGE\tBUDGET\tSTALE")
	for _, r := range reports {
		outcome := "never"
		if r.LastOutcome != nil {
			outcome = string(*r.LastOutcome)
		}
		age := "-"
		if r.Age != nil {
			age = r.Age.Truncate(time.Second).String()
		}
		budget := "-"
		if r.Budget > 0 {
			budget = r.Budget.String()
		}
		stale := "no"
		if r.Stale {
			stale = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ViewName, r.TenantScope, outcome, age, budget, stale)
	}
	_ = tw.Flush()
}
