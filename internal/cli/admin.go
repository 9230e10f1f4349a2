package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewSetInvestmentCommand creates the set-investment command.
func NewSetInvestmentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-investment <contract-ref>",
		Short: "Set the investment contract reference (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, func(env *ledgerEnv) error {
				if err := env.Ledger.SetInvestmentContract(env.Caller, args[0]); err != nil {
					return ledgerError("set investment contract", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(
					map[string]string{"investment_contract": args[0]},
					func(w io.Writer) { fmt.Fprintf(w, "Investment contract set to %s\n", args[0]) },
				)
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove all periods, claims, and the investment contract reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "reset deletes the whole ledger; pass --yes to confirm")
			}
			return withLedger(opts, func(env *ledgerEnv) error {
				if env.Caller != env.Ledger.Owner() {
					return NewExitError(ExitFailure, "reset: only the ledger owner may reset")
				}
				if err := env.Ledger.Reset(); err != nil {
					return ledgerError("reset", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(
					map[string]bool{"reset": true},
					func(w io.Writer) { fmt.Fprintln(w, "Ledger reset") },
				)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
