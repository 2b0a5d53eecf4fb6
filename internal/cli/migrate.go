package cli

import (
	"github.com/spf13/cobra"
)

// MigrateResult is the JSON payload of migrate
type MigrateResult struct {
	Applied bool `json:"applied"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema",
		Long: `Apply the ledger schema: tables, allocation sum triggers, reporting views
and refresh bookkeeping. Safe to run repeatedly.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			return withDeps(cmd.Context(), rootOpts, f, func(deps *Deps) error {
				f.VerboseLog("Applying schema")
				if err := deps.Migrate(cmd.Context()); err != nil {
					return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to apply schema", err)
				}
				return f.Success(MigrateResult{Applied: true}, "✓ Schema applied\n")
			})
		},
	}

	return cmd
}
