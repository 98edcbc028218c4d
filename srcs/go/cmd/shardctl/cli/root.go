package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// -ldflags "-X github.com/shardrun/shardrun/srcs/go/cmd/shardctl/cli.version=$v
var version = `dev`

var rootCmd = &cobra.Command{
	Use:           "shardctl",
	Short:         "Work with sharded training jobs on SLURM",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
