/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/internal/changes"
	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/seed"
	"github.com/socialmock/apiserver/internal/storage"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/socialmock/apiserver/types"
	"github.com/spf13/cobra"
)

var seedFlags struct {
	users    int
	posts    int
	comments int
	seed     int64
	out      string
	upload   string
	from     string
	file     string
	list     bool
	publish  bool
}

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generates fake users, posts and comments and loads them into the store",
	Long: `Generates a fresh dataset and replaces the store content with it. Usage:

	socialmock seed
	socialmock seed --seed 42 --out db.json
	socialmock seed --upload nightly
	socialmock seed --from nightly
	socialmock seed --file db.json --upload nightly
	socialmock seed --list
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.LoadConfig()

		if seedFlags.list || seedFlags.upload != "" || seedFlags.from != "" {
			objects, err := storage.Open(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open object storage: %w", err)
			}
			return runSnapshotSeed(cmd, cfg, seed.NewSnapshots(objects))
		}

		data, err := seedDataset()
		if err != nil {
			return err
		}
		return loadDataset(cmd, cfg, data)
	},
}

func runSnapshotSeed(cmd *cobra.Command, cfg config.Config, snapshots *seed.Snapshots) error {
	ctx := cmd.Context()

	if seedFlags.list {
		names, err := snapshots.List(ctx)
		if err != nil {
			return fmt.Errorf("list snapshots: %w", err)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	if seedFlags.from != "" {
		data, err := snapshots.Load(ctx, seedFlags.from)
		if err != nil {
			return err
		}
		return loadDataset(cmd, cfg, data)
	}

	data, err := seedDataset()
	if err != nil {
		return err
	}
	if err := snapshots.Save(ctx, seedFlags.upload, data); err != nil {
		return err
	}
	log.Printf("uploaded snapshot %s", seedFlags.upload)
	return loadDataset(cmd, cfg, data)
}

// loadDataset writes data to the --out file when set and then into the
// configured store.
func loadDataset(cmd *cobra.Command, cfg config.Config, data types.Dataset) error {
	ctx := cmd.Context()

	if seedFlags.out != "" {
		if err := seed.WriteFile(seedFlags.out, data); err != nil {
			return fmt.Errorf("write %s: %w", seedFlags.out, err)
		}
		log.Printf("wrote dataset to %s", seedFlags.out)
	}

	var opts []store.Option
	if seedFlags.publish {
		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open message queue: %w", err)
		}
		defer queue.Close()
		opts = append(opts, store.WithChangeSink(changes.NewPublisher(queue, cfg.MQ.ChannelPrefix)))
	}

	st, err := store.Open(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	return seed.NewSeeder(st).Run(ctx, data)
}

// seedDataset reads the --file dataset, or generates one without it.
func seedDataset() (types.Dataset, error) {
	if seedFlags.file == "" {
		return seed.NewGenerator(seedOptions()).Generate(), nil
	}
	data, err := seed.ReadFile(seedFlags.file)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("read %s: %w", seedFlags.file, err)
	}
	return data, nil
}

func seedOptions() seed.Options {
	opts := seed.DefaultOptions()
	opts.Users = seedFlags.users
	opts.PostsPerUser = seedFlags.posts
	opts.CommentsPerPost = seedFlags.comments
	opts.Seed = seedFlags.seed
	return opts
}

func init() {
	rootCmd.AddCommand(seedCmd)

	defaults := seed.DefaultOptions()
	seedCmd.Flags().IntVar(&seedFlags.users, "users", defaults.Users, "Number of users to generate")
	seedCmd.Flags().IntVar(&seedFlags.posts, "posts", defaults.PostsPerUser, "Posts per user")
	seedCmd.Flags().IntVar(&seedFlags.comments, "comments", defaults.CommentsPerPost, "Comments per post")
	seedCmd.Flags().Int64Var(&seedFlags.seed, "seed", 0, "Random seed, 0 picks one")
	seedCmd.Flags().StringVar(&seedFlags.out, "out", "", "Also write the dataset to this JSON file")
	seedCmd.Flags().StringVar(&seedFlags.upload, "upload", "", "Store the generated dataset as a named snapshot")
	seedCmd.Flags().StringVar(&seedFlags.from, "from", "", "Load a named snapshot instead of generating")
	seedCmd.Flags().StringVar(&seedFlags.file, "file", "", "Load the dataset from a JSON file instead of generating")
	seedCmd.Flags().BoolVar(&seedFlags.list, "list", false, "List stored snapshots")
	seedCmd.Flags().BoolVar(&seedFlags.publish, "publish", false, "Publish a change for every seeded document")
	seedCmd.MarkFlagsMutuallyExclusive("upload", "from", "list")
	seedCmd.MarkFlagsMutuallyExclusive("file", "from", "list")
	seedCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if seedFlags.users < 0 || seedFlags.posts < 0 || seedFlags.comments < 0 {
			return errors.New("--users, --posts and --comments must not be negative")
		}
		return nil
	}
}
