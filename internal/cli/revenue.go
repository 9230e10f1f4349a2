package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/revledger-go/revshare"
)

// NewRecordCommand creates the record command.
func NewRecordCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "record <project> <period> <amount>",
		Short: "Record a period's total revenue (owner only)",
		Long: `Record the total revenue of a project for a period, in the smallest
currency unit. Each period can be recorded once.

Example:
  revledger record 1 202301 50000`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, period, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}
			return withLedger(opts, func(env *ledgerEnv) error {
				if err := env.Ledger.RecordRevenueString(env.Caller, projectID, period, args[2]); err != nil {
					return ledgerError("record revenue", err)
				}
				p, err := env.Ledger.Period(projectID, period)
				if err != nil {
					return ledgerError("record revenue", err)
				}
				return printPeriod(opts, cmd.OutOrStdout(), p, "Recorded")
			})
		},
	}
}

// NewDistributeCommand creates the distribute command.
func NewDistributeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute <project> <period>",
		Short: "Mark a recorded period as distributed (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, period, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}
			return withLedger(opts, func(env *ledgerEnv) error {
				if err := env.Ledger.DistributeRevenue(env.Caller, projectID, period); err != nil {
					return ledgerError("distribute revenue", err)
				}
				p, err := env.Ledger.Period(projectID, period)
				if err != nil {
					return ledgerError("distribute revenue", err)
				}
				return printPeriod(opts, cmd.OutOrStdout(), p, "Distributed")
			})
		},
	}
}

func printPeriod(opts *RootOptions, w io.Writer, p *revshare.RevenuePeriod, verb string) error {
	return NewOutputFormatter(opts.Format, w).Print(p, func(w io.Writer) {
		fmt.Fprintf(w, "%s project %d period %d: revenue %d", verb, p.ProjectID, p.Period, p.TotalRevenue)
		if p.Distributed {
			fmt.Fprintf(w, ", distributed at %d", p.DistributionTimestamp)
		}
		fmt.Fprintln(w)
	})
}

// NewShareCommand creates the share command.
func NewShareCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "share <project> <period> <investor>",
		Short: "Show an investor's share of a period without claiming it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, period, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}
			investor := revshare.Identity(args[2])
			return withLedger(opts, func(env *ledgerEnv) error {
				share, err := env.Ledger.CalculateInvestorShare(projectID, period, investor)
				if err != nil {
					return ledgerError("calculate share", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(map[string]interface{}{
					"project_id": projectID,
					"period":     period,
					"investor":   investor,
					"share":      share,
				}, func(w io.Writer) {
					fmt.Fprintf(w, "%d\n", share)
				})
			})
		},
	}
}

// NewClaimCommand creates the claim command.
func NewClaimCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <project> <period>",
		Short: "Claim the caller's share of a distributed period",
		Long: `Claim the caller's (--as) share of a distributed period. Each
investor can claim a period once.

Example:
  revledger claim 1 202301 --as ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, period, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}
			return withLedger(opts, func(env *ledgerEnv) error {
				share, err := env.Ledger.ClaimRevenue(env.Caller, projectID, period)
				if err != nil {
					return ledgerError("claim revenue", err)
				}
				claim := &revshare.InvestorClaim{
					ProjectID: projectID, Period: period, Investor: env.Caller, Amount: share, Claimed: true,
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(claim, func(w io.Writer) {
					fmt.Fprintf(w, "Claimed %d for %s (project %d period %d)\n", share, env.Caller, projectID, period)
				})
			})
		},
	}
}
