package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/revledger-go/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir string
	As      string // caller identity; defaults to the configured owner
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the revledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "revledger",
		Short: "Per-project revenue recording, distribution, and investor claims",
		Long: `revledger records each project's revenue once per period, marks the
period distributed, and lets every investor claim their ownership share of it
exactly once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "datadir", config.DefaultDataDir(), "data directory")
	cmd.PersistentFlags().StringVar(&opts.As, "as", "", "caller identity (default: configured owner)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSetInvestmentCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewDistributeCommand(opts))
	cmd.AddCommand(NewShareCommand(opts))
	cmd.AddCommand(NewClaimCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewPayoutsCommand(opts))
	cmd.AddCommand(NewOwnershipCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
