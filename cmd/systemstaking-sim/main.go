package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/aethelred/systemstaking/cmd/systemstaking-sim/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("failure when running simulator", "err", err)
		os.Exit(1)
	}
}
