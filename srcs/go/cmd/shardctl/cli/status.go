package cli

import (
	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/slurm"
)

var statusCmd = &cobra.Command{
	Use:   "status <jobID>",
	Short: "Show the scheduler state of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := slurm.NewClient()
		info, err := c.JobInfo(cmd.Context(), args[0])
		if err == nil {
			cmd.Printf("%s %s %s\n", info.ID, info.Name, info.State)
			return nil
		}
		if !slurm.IsNoJobFound(err) {
			return err
		}
		state, code, err := c.FinalState(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("%s %s exit=%d\n", args[0], state, code)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
