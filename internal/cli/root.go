package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/attribution-io/ledger-core/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvPath    string
	Verbose    bool
	Format     string // "json" | "text"

	// NewDeps opens the services a command needs; tests replace it
	NewDeps DepsFactory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of ledgerctl.
// A nil factory opens real dependencies from configuration.
func NewRootCommand(newDeps DepsFactory) *cobra.Command {
	if newDeps == nil {
		newDeps = DefaultDeps
	}
	opts := &RootOptions{NewDeps: newDeps}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the attribution ledger",
		Long: `Operate the attribution ledger: apply the schema, verify allocation sums,
refresh reporting views and inspect how stale they are.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			// Verbose runs log every refresh and retry to stderr
			if opts.Verbose {
				err := logger.Initialize(logger.Config{Debug: true, Tags: map[string]string{"service": "ledgerctl"}})
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to initialize logger", err)
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.EnvPath, "env", "config/", "directory holding .env files")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewRefreshAllCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewValidateViewsCommand(opts))

	return cmd
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
