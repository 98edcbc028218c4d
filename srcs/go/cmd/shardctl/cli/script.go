package cli

import (
	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/profile"
)

var (
	scriptProfile  string
	scriptOut      string
	scriptLauncher string
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Render the batch script of a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(scriptProfile)
		if err != nil {
			return err
		}
		s, err := p.Script(scriptLauncher)
		if err != nil {
			return err
		}
		if len(scriptOut) > 0 {
			return s.WriteFile(scriptOut)
		}
		cmd.Print(s.Render())
		return nil
	},
}

func init() {
	scriptCmd.Flags().StringVarP(&scriptProfile, "profile", "p", "train.toml", "path to the profile")
	scriptCmd.Flags().StringVarP(&scriptOut, "output", "o", "", "write the script here instead of stdout")
	scriptCmd.Flags().StringVar(&scriptLauncher, "launcher", "shardrun", "launcher binary the job will run")
	rootCmd.AddCommand(scriptCmd)
}
