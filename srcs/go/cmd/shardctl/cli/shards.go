package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shardrun/shardrun/srcs/go/profile"
	"github.com/shardrun/shardrun/srcs/go/shard"
)

var (
	shardsProfile string
	shardsLimit   int
)

var shardsCmd = &cobra.Command{
	Use:   "shards [url]",
	Short: "Check the training shards in object storage",
	Long: `Expands the shard pattern of the profile, checks every shard in S3,
sums the sample counts from sizes.json and prints the resulting
epoch plan. A pattern given as argument overrides the profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(shardsProfile)
		if err != nil {
			return err
		}
		pattern := p.Shards
		if len(args) == 1 {
			pattern = args[0]
		}
		if !shard.IsS3(pattern) {
			return errors.Errorf("only s3:// shard sets can be checked, got %q", pattern)
		}
		u, err := shard.ParseURL(pattern)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, err := shard.NewStore(ctx)
		if err != nil {
			return err
		}
		infos, err := store.StatAll(ctx, *u, shardsLimit)
		if err != nil {
			return err
		}
		var present int
		var total int64
		var keys []string
		for _, info := range infos {
			keys = append(keys, info.Key)
			if info.Exists {
				present++
				total += info.Size
			}
		}
		cmd.Printf("%d shards, %d present, %d missing, %s\n",
			len(infos), present, len(infos)-present, humanize.IBytes(uint64(total)))
		sizes, err := store.Sizes(ctx, *u)
		if err != nil {
			if errors.Is(err, shard.ErrNoSizes) {
				cmd.Println("no sizes.json next to the shards")
				return nil
			}
			return err
		}
		cmd.Printf("%s samples counted in sizes.json\n", humanize.Comma(shard.NumSamples(sizes, keys)))
		plan, err := shard.MakePlan(p.TrainNumSamples, len(infos), p.BatchSize, p.Workers,
			p.Nodes*p.GPUsPerNode, p.DatasetResampled, false)
		if err != nil {
			return err
		}
		cmd.Println(plan.DebugString())
		if missing := len(infos) - present; missing > 0 {
			return errors.Errorf("%d of %d shards missing", missing, len(infos))
		}
		return nil
	},
}

func init() {
	shardsCmd.Flags().StringVarP(&shardsProfile, "profile", "p", "train.toml", "path to the profile")
	shardsCmd.Flags().IntVar(&shardsLimit, "limit", 0, "max concurrent S3 requests, 0 uses the default")
	rootCmd.AddCommand(shardsCmd)
}
