package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/revledger-go/revshare"
)

// projectView is the JSON shape of `show <project>`.
type projectView struct {
	ProjectID          uint64                    `json:"project_id"`
	InvestmentContract string                    `json:"investment_contract"`
	Periods            []*revshare.RevenuePeriod `json:"periods"`
}

// periodView is the JSON shape of `show <project> <period>`.
type periodView struct {
	*revshare.RevenuePeriod
	Claims []*revshare.InvestorClaim `json:"claims"`
}

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project> [period]",
		Short: "Show a project's periods, or one period and its claims",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseUint("project", args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				period, err := parseUint("period", args[1])
				if err != nil {
					return err
				}
				return withLedger(opts, func(env *ledgerEnv) error {
					return showPeriod(opts, cmd.OutOrStdout(), env.Ledger, projectID, period)
				})
			}
			return withLedger(opts, func(env *ledgerEnv) error {
				return showProject(opts, cmd.OutOrStdout(), env.Ledger, projectID)
			})
		},
	}
}

func showProject(opts *RootOptions, w io.Writer, ledger *revshare.Ledger, projectID uint64) error {
	ref, err := ledger.InvestmentContract()
	if err != nil {
		return ledgerError("show", err)
	}
	periods, err := ledger.Periods(projectID)
	if err != nil {
		return ledgerError("show", err)
	}
	if periods == nil {
		periods = []*revshare.RevenuePeriod{}
	}

	view := projectView{ProjectID: projectID, InvestmentContract: ref, Periods: periods}
	return NewOutputFormatter(opts.Format, w).Print(view, func(w io.Writer) {
		if ref != "" {
			fmt.Fprintf(w, "Investment contract: %s\n", ref)
		}
		if len(periods) == 0 {
			fmt.Fprintf(w, "No periods recorded for project %d\n", projectID)
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PERIOD\tREVENUE\tDISTRIBUTED\tAT")
		for _, p := range periods {
			fmt.Fprintf(tw, "%d\t%d\t%t\t%d\n", p.Period, p.TotalRevenue, p.Distributed, p.DistributionTimestamp)
		}
		tw.Flush()
	})
}

func showPeriod(opts *RootOptions, w io.Writer, ledger *revshare.Ledger, projectID, period uint64) error {
	p, err := ledger.Period(projectID, period)
	if err != nil {
		return ledgerError("show", err)
	}
	claims, err := ledger.Claims(projectID, period)
	if err != nil {
		return ledgerError("show", err)
	}
	if claims == nil {
		claims = []*revshare.InvestorClaim{}
	}

	return NewOutputFormatter(opts.Format, w).Print(periodView{RevenuePeriod: p, Claims: claims}, func(w io.Writer) {
		fmt.Fprintf(w, "Project %d period %d\n", p.ProjectID, p.Period)
		fmt.Fprintf(w, "  Revenue:     %d\n", p.TotalRevenue)
		fmt.Fprintf(w, "  Distributed: %t\n", p.Distributed)
		if p.Distributed {
			fmt.Fprintf(w, "  At:          %d\n", p.DistributionTimestamp)
		}
		if len(claims) == 0 {
			fmt.Fprintln(w, "  No claims")
			return
		}
		fmt.Fprintln(w, "  Claims:")
		for _, c := range claims {
			fmt.Fprintf(w, "    %s  %d\n", c.Investor, c.Amount)
		}
	})
}

// NewPayoutsCommand creates the payouts command.
func NewPayoutsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "payouts <project> <period> [investor...]",
		Short: "Show every investor's share of a period and whether it was claimed",
		Long: `Show the share owed to each investor for a recorded period. Without
investors, every investor in the ownership table for the project is listed.
Dust is revenue left after flooring every share.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, period, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}
			investors := make([]revshare.Identity, 0, len(args)-2)
			for _, a := range args[2:] {
				investors = append(investors, revshare.Identity(a))
			}
			return withLedger(opts, func(env *ledgerEnv) error {
				report, err := env.Ledger.Payouts(projectID, period, investors)
				if err != nil {
					return ledgerError("payouts", err)
				}
				if report.Payouts == nil {
					report.Payouts = []revshare.Payout{}
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(report, func(w io.Writer) {
					printPayouts(w, report)
				})
			})
		},
	}
}

func printPayouts(w io.Writer, r *revshare.PayoutReport) {
	fmt.Fprintf(w, "Project %d period %d: revenue %d, distributed %t\n",
		r.ProjectID, r.Period, r.TotalRevenue, r.Distributed)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVESTOR\tBP\tAMOUNT\tCLAIMED")
	for _, p := range r.Payouts {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%t\n", p.Investor, p.BasisPoints, p.Amount, p.Claimed)
	}
	tw.Flush()
	fmt.Fprintf(w, "Allocated %d, dust %d\n", r.Allocated, r.Dust)
}
