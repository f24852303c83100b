package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// RunCmd replays a scenario and prints the outcome.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario-file]",
		Short: "Run a scenario and print per-token results",
		Example: `  systemstaking-sim run scenario.yaml
  systemstaking-sim run scenario.yaml --trace --decimals 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}

			refresh, _ := cmd.Flags().GetBool(flagRefresh)
			res, err := Simulate(sc, loggerFor(cmd), refresh)
			if err != nil {
				return err
			}

			out := outputFor(cmd)
			decimals := decimalsFor(cmd)
			if trace, _ := cmd.Flags().GetBool(flagTrace); trace {
				if err := renderTrace(out, res, decimals); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			if err := renderSummary(out, res, decimals); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if err := renderEventCounts(out, res); err != nil {
				return err
			}

			for _, msg := range res.StepErrors {
				fmt.Fprintf(cmd.ErrOrStderr(), "step rejected: %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().Bool(flagTrace, false, "Print a row for every block that touched a token")
	cmd.Flags().Bool(flagRefresh, false, "Apply token configs immediately instead of at the first round rotation")

	return cmd
}

func renderTrace(w io.Writer, res *Result, decimals int32) error {
	table := tablewriter.NewWriter(w)
	table.Header("Height", "Round", "Denom", "Farming", "Target", "Staked", "Pending", "Unsettled", "Paid Out", "Events")
	for _, snap := range res.Trace {
		if err := table.Append([]string{
			strconv.FormatInt(snap.Height, 10),
			strconv.FormatUint(uint64(snap.Round), 10),
			snap.Denom,
			formatAmount(snap.Info.FarmingPrincipal, decimals),
			formatAmount(snap.Info.TargetAllocation, decimals),
			formatAmount(snap.Info.StakedPrincipal, decimals),
			formatAmount(snap.Info.PendingRedeem, decimals),
			formatAmount(snap.Info.UnsettledCredit, decimals),
			formatAmount(snap.PaidOut, decimals),
			strings.Join(snap.EventTags, ","),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderSummary(w io.Writer, res *Result, decimals int32) error {
	fmt.Fprintf(w, "height %d, round %d (started at %d)\n", res.FinalHeight, res.FinalRound.Index, res.FinalRound.StartBlock)

	table := tablewriter.NewWriter(w)
	table.Header("Denom", "Tracked", "Staked", "Pending", "Unsettled", "Reserve", "Custody Yield", "Paid Out")
	for _, token := range res.Tokens {
		tracked := "yes"
		if !token.Tracked {
			tracked = "no"
		}
		if err := table.Append([]string{
			token.Denom,
			tracked,
			formatAmount(token.Info.StakedPrincipal, decimals),
			formatAmount(token.Info.PendingRedeem, decimals),
			formatAmount(token.Info.UnsettledCredit, decimals),
			formatAmount(token.Reserve, decimals),
			formatAmount(token.CustodyYld, decimals),
			formatAmount(token.PaidOut, decimals),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderEventCounts(w io.Writer, res *Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Event", "Count")
	for _, eventType := range res.SortedEventTypes() {
		if err := table.Append([]string{eventType, strconv.Itoa(res.EventCounts[eventType])}); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatAmount prints an integer amount with the given number of implied
// decimal places.
func formatAmount(amount sdkmath.Int, decimals int32) string {
	if amount.IsNil() {
		return "0"
	}
	return decimal.NewFromBigInt(amount.BigInt(), -decimals).StringFixed(decimals)
}
