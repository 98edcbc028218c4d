package cli

import (
	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/slurm"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <jobID>",
	Short: "Cancel a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return slurm.NewClient().Cancel(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
