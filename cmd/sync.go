/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/internal/indexer"
	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/search"
	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keeps the post search index in sync with store changes",
	Long: `Consumes post changes from the message queue and applies them to the
search index until interrupted. Needs a broker shared with the server
(MQ_DRIVER=rabbitmq, pubsub or nats).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open message queue: %w", err)
		}
		defer queue.Close()

		index, err := search.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}
		defer index.Close()

		return indexer.New(queue, index, cfg.MQ.ChannelPrefix).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
