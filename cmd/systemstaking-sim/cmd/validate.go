package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// ValidateCmd checks a scenario without running it.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario-file]",
		Short: "Validate a scenario file and list its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			if err := sc.Validate(); err != nil {
				return fmt.Errorf("invalid scenario: %w", err)
			}

			out := outputFor(cmd)
			decimals := decimalsFor(cmd)
			fmt.Fprintf(out, "scenario OK: %d blocks, round length %d, %d tokens, %d steps\n",
				sc.Blocks, sc.Params.RoundLength, len(sc.Tokens), len(sc.Steps))

			table := tablewriter.NewWriter(out)
			table.Header("Denom", "Delay", "Rate", "Sign", "Base", "Pools", "Reserve")
			for _, token := range sc.Tokens {
				pools := make([]string, len(token.Pools))
				for i, pool := range token.Pools {
					pools[i] = fmt.Sprintf("%d@%s", pool.ID, pool.Weight)
				}
				if err := table.Append([]string{
					token.Denom,
					strconv.FormatUint(*token.Update.ApplyDelay, 10),
					token.Update.StakeRate.String(),
					string(*token.Update.RateSign),
					formatAmount(*token.Update.StakeBase, decimals),
					strings.Join(pools, " "),
					formatAmount(token.Reserve, decimals),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
