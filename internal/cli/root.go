package cli

import (
	"github.com/spf13/cobra"
)

var Version = "dev"

// RootCmd is the simulate command tree.
var RootCmd = &cobra.Command{
	Use:     "simulate",
	Version: Version,
	Short:   "Play scripted turnaround games without the web server",
	Long: `simulate replays a YAML scenario through the round engine and prints
the resulting timelines, fines and KPIs. Rule constants come from the same
TURNAROUND_* environment variables the web server reads.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
