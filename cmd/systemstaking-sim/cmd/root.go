package cmd

import (
	"io"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
)

const (
	flagVerbose  = "verbose"
	flagDecimals = "decimals"
	flagTrace    = "trace"
	flagRefresh  = "refresh"
)

// NewRootCmd creates the simulator root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "systemstaking-sim",
		Short: "Replay a system staking scenario block by block",
		Long: `systemstaking-sim runs the system staking module against in-memory bank,
farming and liquid staking modules and reports how staked principal,
pending redemptions and payouts evolve over a YAML scenario.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool(flagVerbose, false, "Log module output to stderr")
	rootCmd.PersistentFlags().Uint32(flagDecimals, 0, "Decimal places used when printing amounts")

	rootCmd.AddCommand(
		RunCmd(),
		ValidateCmd(),
	)

	return rootCmd
}

func loggerFor(cmd *cobra.Command) log.Logger {
	verbose, _ := cmd.Flags().GetBool(flagVerbose)
	if !verbose {
		return log.NewNopLogger()
	}
	return log.NewLogger(cmd.ErrOrStderr(), log.ColorOption(false))
}

func decimalsFor(cmd *cobra.Command) int32 {
	decimals, _ := cmd.Flags().GetUint32(flagDecimals)
	return int32(decimals)
}

func outputFor(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
