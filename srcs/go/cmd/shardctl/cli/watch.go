package cli

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/slurm"
)

var watchPeriod time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <jobID>",
	Short: "Follow a job until it ends",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := slurm.NewClient().WaitJob(cmd.Context(), args[0], watchPeriod)
		if err != nil {
			return err
		}
		cmd.Println(state)
		if state != slurm.StateCompleted {
			return errors.Errorf("job %s ended as %s", args[0], state)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchPeriod, "period", 0, "poll period, 0 uses the configured monitoring period")
	rootCmd.AddCommand(watchCmd)
}
