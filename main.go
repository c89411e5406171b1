package main

import (
	"os"

	"github.com/cottand/exhaust/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "exhaust [subcommand]",
	Short:        "exhaust ♟\n a pattern-match exhaustiveness checker over sealed type models",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
}
