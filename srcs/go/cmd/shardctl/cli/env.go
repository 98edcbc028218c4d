package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/config"
	"github.com/shardrun/shardrun/srcs/go/configserver"
	"github.com/shardrun/shardrun/srcs/go/launch"
	"github.com/shardrun/shardrun/srcs/go/plan"
	"github.com/shardrun/shardrun/srcs/go/slurm"
)

var (
	envServer string
	envHosts  string
	envPort   int
	envExport bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the derived launch environment",
	Long: `Derives the launch variables from the node list and prints them one
per line, so a shell script can eval them. The node list comes from
-H, from a running config server, or from the surrounding scheduler
allocation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := resolveEnv(cmd.Context())
		if err != nil {
			return err
		}
		envs := env.Envs()
		for _, k := range envs.Keys() {
			if envExport {
				cmd.Printf("export %s=%s\n", k, envs[k])
			} else {
				cmd.Printf("%s=%s\n", k, envs[k])
			}
		}
		return nil
	},
}

func resolveEnv(ctx context.Context) (*launch.Env, error) {
	if len(envServer) > 0 {
		c, err := configserver.NewClient(envServer).Get()
		if err != nil {
			return nil, err
		}
		return &c.Launch, nil
	}
	if len(envHosts) > 0 {
		hl, err := plan.ParseHostList(envHosts)
		if err != nil {
			return nil, err
		}
		return launch.Derive(hl.Hostnames(), uint16(envPort))
	}
	alloc, err := slurm.ParseEnv()
	if err != nil {
		return nil, err
	}
	hostnames, err := slurm.NewClient().Hostnames(ctx, alloc.Nodelist)
	if err != nil {
		return nil, err
	}
	if err := alloc.CheckNodeCount(hostnames); err != nil {
		return nil, err
	}
	return launch.Derive(hostnames, uint16(envPort))
}

func init() {
	envCmd.Flags().StringVarP(&envServer, "server", "s", "", "config server URL")
	envCmd.Flags().StringVarP(&envHosts, "hosts", "H", "", "comma separated list of <hostname>[:<nslots>]")
	envCmd.Flags().IntVar(&envPort, "port", config.DefaultMasterPort, "rendezvous port on the master node")
	envCmd.Flags().BoolVar(&envExport, "export", false, "prefix each line with export")
	rootCmd.AddCommand(envCmd)
}
