package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/profile"
	"github.com/shardrun/shardrun/srcs/go/slurm"
)

var (
	submitProfile  string
	submitLauncher string
	submitScript   string
	submitWait     bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the batch script of a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(submitProfile)
		if err != nil {
			return err
		}
		s, err := p.Script(submitLauncher)
		if err != nil {
			return err
		}
		c := slurm.NewClient()
		jobID, err := c.Submit(cmd.Context(), *s, submitScript)
		if err != nil {
			return err
		}
		cmd.Println(jobID)
		if !submitWait {
			return nil
		}
		state, err := c.WaitJob(cmd.Context(), jobID, 0)
		if err != nil {
			return err
		}
		if state != slurm.StateCompleted {
			return errors.Errorf("job %s ended as %s", jobID, state)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitProfile, "profile", "p", "train.toml", "path to the profile")
	submitCmd.Flags().StringVar(&submitLauncher, "launcher", "shardrun", "launcher binary the job will run")
	submitCmd.Flags().StringVar(&submitScript, "script", "", "also keep the rendered script at this path")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "wait for the job to end")
	rootCmd.AddCommand(submitCmd)
}
